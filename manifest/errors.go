package manifest

import "errors"

var (
	// ErrParsing means the playlist body is not UTF-8 text.
	ErrParsing = errors.New("playlist is not valid UTF-8 text")
	// ErrEmpty means no variant with both a bandwidth and a resolution was found.
	ErrEmpty = errors.New("playlist has no resolution options")
	// ErrNetwork wraps fetch failures.
	ErrNetwork = errors.New("playlist fetch failed")
)
