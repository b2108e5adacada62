// Package assets resolves named assets from embedded, local and remote
// sources and caches their bytes.
package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/logger"
)

// ErrNotFound reports that no source holds an asset.
var ErrNotFound = errors.New("asset not found")

// Status is the outcome of a fetch.
type Status int

const (
	Fulfilled Status = iota
	NotFound
	Failed
	Pending
)

func (s Status) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case NotFound:
		return "not found"
	case Failed:
		return "failed"
	case Pending:
		return "pending"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is a fetched asset or the reason it is unavailable.
type Result struct {
	Name   string
	Status Status
	Data   []byte
	Err    error
}

// AssetError describes a failed or missing asset.
type AssetError struct {
	Name   string
	Status Status
	Err    error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %s: %v", e.Name, e.Status, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// Repository resolves assets. Synchronous sources are tried in order; the
// remote source, if any, is asked last and answers through Poll.
type Repository struct {
	sources []Source
	remote  *Remote
	cache   *Cache

	mu      sync.Mutex
	pending map[string]bool
	results chan Result
}

// NewRepository creates a repository over the given sources.
func NewRepository(sources ...Source) *Repository {
	return &Repository{
		sources: sources,
		cache:   NewCache(),
		pending: make(map[string]bool),
		results: make(chan Result, 8),
	}
}

// SetRemote adds an asynchronous HTTP source behind the synchronous ones.
func (r *Repository) SetRemote(remote *Remote) {
	r.remote = remote
}

// Cache returns the repository cache.
func (r *Repository) Cache() *Cache {
	return r.cache
}

// Fetch returns an asset if a synchronous source has it. Otherwise it starts
// a remote download and reports Pending; the outcome arrives through Poll.
func (r *Repository) Fetch(name string) Result {
	if res, done := r.fetchLocal(name); done {
		return res
	}
	if r.remote == nil {
		return notFound(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending[name] {
		return Result{Name: name, Status: Pending}
	}
	r.pending[name] = true

	logger.Debug("fetching remote asset", zap.String("asset", name), zap.String("remote", r.remote.Name()))
	go func() {
		r.results <- r.fetchRemote(context.Background(), name)
	}()
	return Result{Name: name, Status: Pending}
}

// Poll returns remote results that completed since the last call. It never
// blocks.
func (r *Repository) Poll() []Result {
	var out []Result
	for {
		select {
		case res := <-r.results:
			r.mu.Lock()
			delete(r.pending, res.Name)
			r.mu.Unlock()
			out = append(out, res)
		default:
			return out
		}
	}
}

// Load returns an asset, waiting for the remote source if needed. It is
// meant for startup assets that the app cannot run without.
func (r *Repository) Load(ctx context.Context, name string) ([]byte, error) {
	res, done := r.fetchLocal(name)
	if !done && r.remote != nil {
		res = r.fetchRemote(ctx, name)
	} else if !done {
		res = notFound(name)
	}
	if res.Status != Fulfilled {
		return nil, res.Err
	}
	return res.Data, nil
}

// fetchLocal consults the cache and synchronous sources. done is false when
// none of them holds the asset.
func (r *Repository) fetchLocal(name string) (Result, bool) {
	if data, ok := r.cache.Get(name); ok {
		return Result{Name: name, Status: Fulfilled, Data: data}, true
	}

	for _, src := range r.sources {
		data, err := src.Open(name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			logger.Warn("asset source failed", zap.String("asset", name), zap.String("source", src.Name()), zap.Error(err))
			return Result{Name: name, Status: Failed, Err: &AssetError{Name: name, Status: Failed, Err: err}}, true
		}
		r.cache.Set(name, data)
		return Result{Name: name, Status: Fulfilled, Data: data}, true
	}
	return Result{}, false
}

func (r *Repository) fetchRemote(ctx context.Context, name string) Result {
	data, err := r.remote.Get(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		return notFound(name)
	case err != nil:
		logger.Warn("remote fetch failed", zap.String("asset", name), zap.Error(err))
		return Result{Name: name, Status: Failed, Err: &AssetError{Name: name, Status: Failed, Err: err}}
	}
	r.cache.Set(name, data)
	return Result{Name: name, Status: Fulfilled, Data: data}
}

func notFound(name string) Result {
	return Result{
		Name:   name,
		Status: NotFound,
		Err:    &AssetError{Name: name, Status: NotFound, Err: ErrNotFound},
	}
}
