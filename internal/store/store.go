// Package store schedules dataset loads and holds the displayed feature mesh.
//
// Datasets are visited round robin. At most one fetch is in flight; a request
// made while one is pending is dropped, not queued.
package store

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/assets"
	"github.com/Faultbox/chronoglobe/internal/feature"
	"github.com/Faultbox/chronoglobe/internal/logger"
)

// ErrLoadInProgress is returned when a request arrives while a fetch is pending.
var ErrLoadInProgress = errors.New("load in progress")

// Fetcher retrieves dataset bytes. *assets.Repository implements it.
type Fetcher interface {
	Fetch(name string) assets.Result
}

// Store is the feature store. It is not safe for concurrent use; remote
// results are handed to Complete from the main loop.
type Store struct {
	datasets []string
	fetcher  Fetcher
	opts     feature.BuildOptions

	cursor   int
	inFlight string // dataset being fetched, empty when idle

	shown      int
	mesh       *feature.Mesh
	meta       *feature.Metadata
	generation uint64
}

// New creates a store over an ordered, non-empty list of dataset names.
func New(fetcher Fetcher, datasets []string, opts feature.BuildOptions) (*Store, error) {
	if len(datasets) == 0 {
		return nil, errors.New("no datasets configured")
	}
	return &Store{
		datasets: slices.Clone(datasets),
		fetcher:  fetcher,
		opts:     opts,
		shown:    -1,
	}, nil
}

// Datasets returns the dataset names in visiting order.
func (s *Store) Datasets() []string { return s.datasets }

// Cursor returns the index of the next dataset to request.
func (s *Store) Cursor() int { return s.cursor }

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool { return s.inFlight != "" }

// Generation increases every time the displayed mesh is replaced.
func (s *Store) Generation() uint64 { return s.generation }

// Current returns the displayed dataset and its geometry. name is empty
// before the first successful load.
func (s *Store) Current() (name string, mesh *feature.Mesh, meta *feature.Metadata) {
	if s.shown < 0 {
		return "", nil, nil
	}
	return s.datasets[s.shown], s.mesh, s.meta
}

// Shown returns the index of the displayed dataset, or -1.
func (s *Store) Shown() int { return s.shown }

// Select moves the cursor to dataset i, wrapping out-of-range indices.
func (s *Store) Select(i int) error {
	if s.Loading() {
		return ErrLoadInProgress
	}
	n := len(s.datasets)
	s.cursor = ((i % n) + n) % n
	return nil
}

// SelectName moves the cursor to the named dataset.
func (s *Store) SelectName(name string) error {
	i := slices.Index(s.datasets, name)
	if i < 0 {
		return fmt.Errorf("dataset %q is not configured", name)
	}
	return s.Select(i)
}

// Step requests the dataset delta positions away from the displayed one.
func (s *Store) Step(delta int) error {
	base := s.shown
	if base < 0 {
		base = s.cursor - 1
	}
	if err := s.Select(base + delta); err != nil {
		logger.Info("load interrupted", zap.String("pending", s.inFlight))
		return err
	}
	return s.Request()
}

// Request fetches the dataset under the cursor. Datasets available
// synchronously are completed before Request returns; otherwise the caller
// passes the eventual result to Complete.
func (s *Store) Request() error {
	if s.Loading() {
		logger.Info("load interrupted", zap.String("pending", s.inFlight))
		return ErrLoadInProgress
	}

	name := s.datasets[s.cursor]
	s.inFlight = name
	logger.Debug("requesting dataset", zap.String("dataset", name), zap.Int("index", s.cursor))

	res := s.fetcher.Fetch(name)
	if res.Status == assets.Pending {
		return nil
	}
	return s.Complete(name, res)
}

// Complete finishes the in-flight fetch. On success the displayed mesh is
// replaced; on failure the previous one stays. Either way the cursor
// advances and the store becomes idle.
func (s *Store) Complete(name string, res assets.Result) error {
	if name != s.inFlight {
		logger.Debug("ignoring unrequested dataset", zap.String("dataset", name))
		return nil
	}
	index := s.cursor
	defer func() {
		s.cursor = (s.cursor + 1) % len(s.datasets)
		s.inFlight = ""
	}()

	if res.Status != assets.Fulfilled {
		err := res.Err
		if err == nil {
			err = &assets.AssetError{Name: name, Status: res.Status, Err: assets.ErrNotFound}
		}
		logger.Warn("dataset unavailable", zap.String("dataset", name), zap.Error(err))
		return err
	}

	features, err := feature.Parse(res.Data)
	if err != nil {
		logger.Warn("dataset rejected", zap.String("dataset", name), zap.Error(err))
		return fmt.Errorf("load %s: %w", name, err)
	}

	mesh, meta, errs := feature.Build(features, s.opts)

	s.mesh = mesh
	s.meta = meta
	s.shown = index
	s.generation++

	logger.Info("dataset loaded",
		zap.String("dataset", name),
		zap.Int("features", meta.Len()),
		zap.Int("polygons", len(meta.Bounds)),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("skipped", len(errs)))
	return nil
}
