package playback

import (
	"fmt"

	"github.com/panorama-cli/panorama/manifest"
	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/stream"
)

// ScrubState tracks the user dragging the position control.
type ScrubState int

const (
	// NotScrubbing lets engine time ticks drive CurrentTime.
	NotScrubbing ScrubState = iota
	// ScrubStarted means the user is dragging; ticks are ignored.
	ScrubStarted
	// ScrubEnded means the user let go and a seek to CurrentTime is in flight.
	ScrubEnded
)

func (s ScrubState) String() string {
	switch s {
	case NotScrubbing:
		return "not scrubbing"
	case ScrubStarted:
		return "scrub started"
	case ScrubEnded:
		return "scrub ended"
	default:
		return fmt.Sprintf("ScrubState(%d)", int(s))
	}
}

// fallbackAspectRatio is assumed when probing yields degenerate dimensions.
const fallbackAspectRatio = 16.0 / 9.0

// Automatic selects the adaptive root playlist instead of a fixed variant.
const Automatic = -1

// State is a snapshot of everything the control panel and renderer need.
type State struct {
	Title   string `json:"title"`
	Details string `json:"details"`

	// Duration and CurrentTime in seconds.
	Duration    float64 `json:"duration"`
	CurrentTime float64 `json:"currentTime"`

	Paused        bool `json:"paused"`
	Buffering     bool `json:"buffering"`
	HasReachedEnd bool `json:"hasReachedEnd"`

	// AspectRatio is width / height.
	AspectRatio float64 `json:"aspectRatio"`
	// Bitrate is the latest throughput sample in bits per second.
	Bitrate float64 `json:"bitrate"`

	Scrub ScrubState `json:"scrub"`

	ControlPanelVisible    bool `json:"controlPanelVisible"`
	ResolutionPanelVisible bool `json:"resolutionPanelVisible"`

	// HorizontalFOV in degrees, already clamped to [0, 360].
	HorizontalFOV  float64         `json:"horizontalFov"`
	Projection     projection.Kind `json:"projection"`
	CameraDistance float64         `json:"cameraDistance"`
	// Width and Height of the frame in pixels, zero until known.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Ladder is replaced wholesale and never modified in place, so snapshots may share it.
	Ladder        stream.Ladder  `json:"ladder"`
	HasManifest   bool           `json:"hasManifest"`
	Manifest      manifest.State `json:"manifest"`
	ManifestError string         `json:"manifestError,omitempty"`

	// Selected is the ladder index being played, or Automatic.
	Selected int `json:"selected"`
	// SourceURL is what the engine is decoding right now.
	SourceURL string `json:"sourceUrl"`
}

func defaultState() State {
	return State{
		AspectRatio:         1,
		ControlPanelVisible: true,
		HorizontalFOV:       stream.DefaultFallbackFieldOfView,
		Projection:          projection.Rectilinear,
		CameraDistance:      stream.DefaultCameraDistance,
		Selected:            Automatic,
	}
}

// VerticalFOV is the horizontal field of view over the aspect ratio, clamped to [0, 180].
func (s State) VerticalFOV() float64 {
	return projection.VerticalFOV(s.HorizontalFOV, s.AspectRatio)
}

// IsPlaying reports whether the clock is running: not paused, not ended, not buffering.
func (s State) IsPlaying() bool {
	return !s.Paused && !s.HasReachedEnd && !s.Buffering
}

// IsLoaded reports whether a stream is open.
func (s State) IsLoaded() bool {
	return s.SourceURL != ""
}

// Progress is CurrentTime over Duration in [0, 1].
func (s State) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return min(1, max(0, s.CurrentTime/s.Duration))
}
