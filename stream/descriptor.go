// Package stream defines the shared models passed between the playback core and its callers.
package stream

import (
	"net/url"

	"github.com/samber/mo"
)

// DefaultFallbackFieldOfView is used when nothing else tells us how wide a video is.
const DefaultFallbackFieldOfView = 180.0

// Descriptor identifies a playable stream.
type Descriptor struct {
	// Title shown in the control panel.
	Title string `json:"title"`
	// Details is a secondary line, e.g. the author or a date.
	Details string `json:"details"`
	// URL of the media or of an HLS master playlist. May be a local file.
	URL string `json:"url"`

	// FallbackFieldOfView (degrees) applies when neither metadata nor probing provide one.
	FallbackFieldOfView float64 `json:"fallbackFieldOfView"`
	// ForcedFieldOfView overrides every other source.
	ForcedFieldOfView mo.Option[float64] `json:"forcedFieldOfView"`

	// IsSecurityScoped marks files that need scoped access held open while playing.
	IsSecurityScoped bool `json:"isSecurityScoped"`
}

// NewDescriptor returns a descriptor for rawURL with default fields.
func NewDescriptor(title, rawURL string) Descriptor {
	return Descriptor{
		Title:               title,
		URL:                 rawURL,
		FallbackFieldOfView: DefaultFallbackFieldOfView,
	}
}

// ID is the stream identity.
func (d Descriptor) ID() string {
	return d.URL
}

// IsRemote reports whether the URL points at a network host.
// Only remote streams can carry an adaptive manifest.
func (d Descriptor) IsRemote() bool {
	u, err := url.Parse(d.URL)
	return err == nil && u.Host != ""
}

func (d Descriptor) String() string {
	if d.Title != "" {
		return d.Title
	}
	return d.URL
}
