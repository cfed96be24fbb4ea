package stream

import (
	"fmt"
)

// ResolutionOption is one variant of an adaptive stream.
type ResolutionOption struct {
	// Width and Height in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`
	// Bitrate is the peak bitrate in bits per second.
	Bitrate int `json:"bitrate"`
	// URL of the variant's media playlist. Identity of the option.
	URL string `json:"url"`
}

// ID is the option identity.
func (r ResolutionOption) ID() string {
	return r.URL
}

// String renders e.g. "1080p (5 Mbps)".
func (r ResolutionOption) String() string {
	return fmt.Sprintf("%s (%s)", r.Label(), r.BitrateLabel())
}

// Label names the resolution: Low, 720p, 1080p, 1K..3K, then 4K, 6K, 8K.
func (r ResolutionOption) Label() string {
	h := r.Height
	switch {
	case h < 500:
		return "Low"
	case h == 720:
		return "720p"
	case h == 1080:
		return "1080p"
	case h >= 1750:
		return fmt.Sprintf("%dK", int(float64(h)/1000+0.4)*2)
	default:
		return fmt.Sprintf("%dK", int(float64(h)/500+0.2))
	}
}

// BitrateLabel renders the peak bitrate in whole Kbps or Mbps.
func (r ResolutionOption) BitrateLabel() string {
	if r.Bitrate < 1_000_000 {
		return fmt.Sprintf("%d Kbps", r.Bitrate/1000)
	}
	return fmt.Sprintf("%d Mbps", r.Bitrate/1_000_000)
}

// AspectRatio returns width / height, or zero when either is missing.
func (r ResolutionOption) AspectRatio() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}
