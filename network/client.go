// Package network provides the shared HTTP client and the "fetch bytes from URL" capability used by the manifest reader.
package network

import (
	"net/http"
	"time"
)

// Client is shared across the application so manifest requests reuse connections to the CDN.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 32
	t.MaxIdleConnsPerHost = 8
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}
