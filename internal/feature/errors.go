package feature

import (
	"errors"
	"fmt"
)

var (
	errNonFinite    = errors.New("non-finite coordinate")
	errNoTriangles  = errors.New("triangulation produced no triangles")
	errTooManySplit = errors.New("subdivision exceeded triangle limit")
)

// DataError reports a dataset that could not be decoded at all.
type DataError struct {
	Op  string
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("feature data: %s: %v", e.Op, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// GeometryError reports a single polygon that could not be tessellated.
// The polygon is skipped and the rest of the batch is kept.
type GeometryError struct {
	Feature string
	Polygon int
	Err     error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("feature %q polygon %d: %v", e.Feature, e.Polygon, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }
