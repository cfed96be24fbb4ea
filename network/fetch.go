package network

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/panorama-cli/panorama/constant"
)

// maxBodySize bounds a manifest download. Master playlists are a few kilobytes.
const maxBodySize = 8 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Fetcher downloads resources over HTTP.
type Fetcher struct {
	Client *http.Client
}

// NewFetcher returns a Fetcher using the shared Client.
func NewFetcher() *Fetcher {
	return &Fetcher{Client: Client}
}

// Fetch returns the body at url. Responses outside the 2xx range are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	client := f.Client
	if client == nil {
		client = Client
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
