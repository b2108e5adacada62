package feature

import (
	"errors"
	"unicode/utf8"

	"github.com/paulmach/orb/geojson"
)

// Parse decodes a GeoJSON FeatureCollection. Any failure is a *DataError.
func Parse(data []byte) ([]*geojson.Feature, error) {
	if !utf8.Valid(data) {
		return nil, &DataError{Op: "decode", Err: errors.New("invalid UTF-8")}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &DataError{Op: "unmarshal", Err: err}
	}
	return fc.Features, nil
}
