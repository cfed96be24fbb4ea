// Package manifest reads the resolution ladder of an HLS master playlist.
package manifest

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/panorama-cli/panorama/stream"
)

// Fetcher retrieves the bytes at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// State of a Reader. Success and Failed are terminal.
type State int

const (
	Fetching State = iota
	Success
	Failed
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reader fetches and parses one playlist. It performs at most one fetch.
type Reader struct {
	url     string
	fetcher Fetcher

	once sync.Once

	mu     sync.RWMutex
	state  State
	ladder stream.Ladder
	err    error
}

// NewReader returns a reader for the master playlist at url.
func NewReader(url string, fetcher Fetcher) *Reader {
	return &Reader{url: url, fetcher: fetcher}
}

// URL of the playlist.
func (r *Reader) URL() string {
	return r.url
}

// Read fetches and parses the playlist on the first call. Every call returns the recorded outcome.
func (r *Reader) Read(ctx context.Context) (stream.Ladder, error) {
	r.once.Do(func() {
		ladder, err := r.read(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()

		if err != nil {
			r.state, r.err = Failed, err
			return
		}
		r.state, r.ladder = Success, ladder
	})

	return r.Ladder(), r.Err()
}

func (r *Reader) read(ctx context.Context) (stream.Ladder, error) {
	base, err := url.Parse(r.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, r.url, err)
	}

	data, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	return Parse(data, base)
}

// State returns the current state.
func (r *Reader) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Ladder returns the parsed options. Empty unless the state is Success.
func (r *Reader) Ladder() stream.Ladder {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ladder
}

// Err returns the failure reason. Nil unless the state is Failed.
func (r *Reader) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}
