package history

import (
	"fmt"
	"time"

	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/stream"
	"github.com/panorama-cli/panorama/util"
)

// resumeMargin keeps resumes away from the very start and the very end of a video.
const resumeMargin = 5.0

// Entry is the saved playback position of one stream.
type Entry struct {
	// ID is the stream identity, see stream.Descriptor.ID.
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`

	// Position and Duration in seconds.
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Finished bool    `json:"finished"`

	HorizontalFOV float64         `json:"horizontal_fov"`
	Projection    projection.Kind `json:"projection"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntry records d at position out of duration seconds.
func NewEntry(d stream.Descriptor, position, duration float64) Entry {
	return Entry{
		ID:        d.ID(),
		Title:     d.Title,
		URL:       d.URL,
		Position:  max(0, position),
		Duration:  max(0, duration),
		UpdatedAt: time.Now(),
	}
}

// Resumable reports whether continuing from Position makes sense.
func (e Entry) Resumable() bool {
	if e.Finished || e.Position < resumeMargin {
		return false
	}
	return e.Duration <= 0 || e.Position < e.Duration-resumeMargin
}

// Progress in [0, 1], zero when the duration is unknown.
func (e Entry) Progress() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return util.Clamp(e.Position/e.Duration, 0, 1)
}

func (e Entry) String() string {
	name := e.Title
	if name == "" {
		name = e.URL
	}
	return fmt.Sprintf("%s : %s / %s", name, util.FormatTimestamp(e.Position), util.FormatTimestamp(e.Duration))
}
