package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/panorama-cli/panorama/constant"
	"github.com/panorama-cli/panorama/icon"
	"github.com/panorama-cli/panorama/playback"
	"github.com/panorama-cli/panorama/util"
	"github.com/samber/lo"
)

var stateTemplate = lo.Must(template.New("state").Parse(constant.StateTemplate))

type stateLine struct {
	Icon      string
	Position  string
	Duration  string
	Bitrate   string
	Buffering bool
}

func renderState(s playback.State) string {
	line := stateLine{
		Icon:      stateIcon(s),
		Position:  util.FormatTimestamp(s.CurrentTime),
		Duration:  util.FormatTimestamp(s.Duration),
		Buffering: s.Buffering,
	}
	if s.Bitrate > 0 {
		line.Bitrate = util.FormatBitrate(s.Bitrate)
	}

	var b strings.Builder
	lo.Must0(stateTemplate.Execute(&b, line))
	return strings.TrimSpace(b.String())
}

func stateIcon(s playback.State) string {
	switch {
	case s.HasReachedEnd:
		return icon.Get(icon.Ended)
	case s.Buffering:
		return icon.Get(icon.Buffering)
	case s.Paused:
		return icon.Get(icon.Pause)
	default:
		return icon.Get(icon.Play)
	}
}

// reportHeadless prints a line whenever the summary changes, until the media ends,
// ctx is done or the updates stop.
func reportHeadless(ctx context.Context, w io.Writer, updates <-chan playback.State) {
	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-updates:
			if !ok {
				return
			}

			if line := renderState(s); line != last {
				fmt.Fprintln(w, line)
				last = line
			}

			if s.HasReachedEnd {
				return
			}
		}
	}
}
