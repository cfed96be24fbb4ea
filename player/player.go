// Package player defines the decode engine the playback controller drives.
// The primary implementation targets 'mpv' via its JSON-IPC interface.
package player

import (
	"context"
	"fmt"
)

// Engine decodes and presents media. Implementations must be safe for concurrent use.
type Engine interface {
	// Open starts decoding url, launching the backend if needed.
	Open(ctx context.Context, url string) error

	// ReplaceSource swaps the current media for url. The pause state is kept.
	ReplaceSource(ctx context.Context, url string) error

	Play() error
	Pause() error

	// Seek moves to an absolute position in seconds and returns once the engine accepted it.
	Seek(ctx context.Context, seconds float64) error

	// Position returns the current playback position in seconds.
	Position() (float64, error)

	// Unload releases the current media but keeps the backend alive.
	Unload() error

	// Subscribe registers fn for engine events. The returned func removes it.
	// fn is called from an engine goroutine and must not block.
	Subscribe(fn func(Event)) (cancel func())

	// Close terminates the backend.
	Close() error
}

// Event is emitted by an Engine.
type Event interface {
	event()
}

// TimeTick is emitted periodically while media is loaded.
type TimeTick struct {
	// Position in seconds.
	Position float64
	// Bitrate is the most recent throughput sample in bits per second, 0 when unknown.
	Bitrate float64
}

// DurationChanged reports a known duration.
type DurationChanged struct {
	Seconds float64
}

// TimeControlChanged reports whether the engine is paused, waiting for data or playing.
type TimeControlChanged struct {
	Status TimeControlStatus
}

// EndOfMedia is emitted once playback reaches the end.
type EndOfMedia struct{}

func (TimeTick) event()           {}
func (DurationChanged) event()    {}
func (TimeControlChanged) event() {}
func (EndOfMedia) event()         {}

// TimeControlStatus mirrors what the engine is doing with the clock.
type TimeControlStatus int

const (
	Paused TimeControlStatus = iota
	Waiting
	Playing
)

func (s TimeControlStatus) String() string {
	switch s {
	case Paused:
		return "paused"
	case Waiting:
		return "waiting"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("TimeControlStatus(%d)", int(s))
	}
}
