package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds a single remote request.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxSize caps the body of a single remote asset.
const DefaultMaxSize int64 = 256 << 20

// ErrTooLarge reports a remote asset bigger than the configured cap.
var ErrTooLarge = errors.New("asset exceeds size limit")

// Remote fetches assets over HTTP relative to a base URL.
type Remote struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	maxSize int64
}

// NewRemote creates a remote source. A nil client gets a default one.
func NewRemote(baseURL string, client *http.Client, timeout time.Duration) (*Remote, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Remote{base: u, client: client, timeout: timeout, maxSize: DefaultMaxSize}, nil
}

// SetMaxSize sets the largest body Get accepts. Zero or less restores
// DefaultMaxSize.
func (r *Remote) SetMaxSize(n int64) {
	if n <= 0 {
		n = DefaultMaxSize
	}
	r.maxSize = n
}

// Name returns the base URL.
func (r *Remote) Name() string { return r.base.String() }

// Get downloads one asset. A 404 maps to ErrNotFound.
func (r *Remote) Get(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("asset name %q: %w", name, err)
	}
	target := r.base.ResolveReference(ref)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("get %s: %w", target, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get %s: unexpected status %s", target, resp.Status)
	}

	if resp.ContentLength > r.maxSize {
		return nil, fmt.Errorf("get %s: %d bytes: %w", target, resp.ContentLength, ErrTooLarge)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("get %s: more than %d bytes: %w", target, r.maxSize, ErrTooLarge)
	}
	return data, nil
}
