package playback

import (
	"math"

	"github.com/panorama-cli/panorama/player"
	"github.com/samber/mo"
)

func (c *Controller) handle(e player.Event) {
	switch e := e.(type) {
	case player.TimeTick:
		c.state.Bitrate = max(0, e.Bitrate)
		// positions reported before a relative seek lands are stale
		if c.seekTarget.IsPresent() {
			if c.seeksInFlight > 0 {
				return
			}
			c.seekTarget = mo.None[float64]()
		}
		// a drag in progress owns CurrentTime
		if c.state.Scrub == NotScrubbing {
			c.state.CurrentTime = e.Position
		}
	case player.DurationChanged:
		if !math.IsNaN(e.Seconds) && !math.IsInf(e.Seconds, 0) && e.Seconds >= 0 {
			c.state.Duration = e.Seconds
		}
	case player.TimeControlChanged:
		c.state.Buffering = e.Status == player.Waiting
		switch e.Status {
		case player.Paused:
			c.state.Paused = true
		case player.Playing:
			c.state.Paused = false
			// buffering only holds the panel; once playback resumes it may hide again
			if c.lastStatus == player.Waiting {
				c.restartAutoHide()
			}
		}
		c.lastStatus = e.Status
	case player.EndOfMedia:
		c.state.HasReachedEnd = true
		c.state.Paused = true
		c.showControlPanel()
	}
}
