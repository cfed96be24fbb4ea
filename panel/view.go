package panel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/icon"
	"github.com/panorama-cli/panorama/manifest"
	"github.com/panorama-cli/panorama/playback"
	"github.com/panorama-cli/panorama/style"
	"github.com/panorama-cli/panorama/util"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

// rungColors go from the top of the ladder down.
var rungColors = []lipgloss.Color{color.Green, color.Yellow, color.Orange, color.Red}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64) + "s"
}

func (m *model) View() string {
	if m.closed {
		return ""
	}

	inner := max(10, m.width-4)
	truncated := func(s string) string {
		return truncate.StringWithTail(s, uint(inner), "…")
	}

	lines := []string{m.viewHeader()}

	if !m.state.IsLoaded() {
		lines = append(lines, "", style.Faint("Nothing is playing"))
		return m.renderLines(lines)
	}

	lines = append(lines, "", truncated(style.Bold(m.title())))
	if m.state.Details != "" {
		lines = append(lines, wrap.String(style.Faint(m.state.Details), inner))
	}

	if !m.state.ControlPanelVisible && !m.scrubbing {
		lines = append(lines, "", style.Faint(m.keymap.togglePanel.Help().Key+" show controls"))
		return m.renderLines(lines)
	}

	lines = append(lines, "", m.viewStatus(), m.viewScrubber(inner))

	if line := m.viewStream(); line != "" {
		lines = append(lines, truncated(line))
	}

	if m.keymap.resolutionsOpen {
		lines = append(lines, "", style.Title("Resolution"), "")
		lines = append(lines, m.viewResolutions()...)
	}

	if m.err != nil {
		lines = append(lines, "", wrap.String(style.Fg(color.Red)(icon.Get(icon.Fail)+" "+m.err.Error()), inner))
	}

	return m.renderLines(lines)
}

func (m *model) title() string {
	if m.state.Title != "" {
		return m.state.Title
	}
	return m.state.SourceURL
}

func (m *model) viewHeader() string {
	header := style.Title("Panorama")
	if !m.state.IsLoaded() {
		return header
	}

	geometry := fmt.Sprintf("%s %s %.0f°×%.0f°",
		icon.Get(icon.Sphere),
		m.state.Projection,
		m.state.HorizontalFOV,
		m.state.VerticalFOV(),
	)
	return header + " " + style.Faint(strings.TrimSpace(geometry))
}

func (m *model) statusIcon() string {
	switch {
	case m.scrubbing || m.state.Scrub != playback.NotScrubbing:
		return icon.Get(icon.Scrub)
	case m.state.HasReachedEnd:
		return icon.Get(icon.Ended)
	case m.state.Buffering:
		return icon.Get(icon.Buffering)
	case m.state.Paused:
		return icon.Get(icon.Pause)
	default:
		return icon.Get(icon.Play)
	}
}

func (m *model) position() float64 {
	if m.scrubbing {
		return m.scrubTo
	}
	return m.state.CurrentTime
}

func (m *model) viewStatus() string {
	clock := util.FormatTimestamp(m.position())
	if m.state.Duration > 0 {
		clock += " / " + util.FormatTimestamp(m.state.Duration)
	}

	status := strings.TrimSpace(m.statusIcon() + " " + clock)
	if m.scrubbing {
		status += " " + style.Fg(color.Orange)("seek")
	}
	return status
}

func (m *model) viewScrubber(width int) string {
	m.progressC.Width = width

	if m.state.Duration <= 0 {
		return m.progressC.ViewAs(0)
	}
	return m.progressC.ViewAs(util.Clamp(m.position()/m.state.Duration, 0, 1))
}

// viewStream shows the bitrate and the manifest state of adaptive streams.
func (m *model) viewStream() string {
	if !m.state.HasManifest {
		return ""
	}

	var parts []string

	if m.opts.ShowBitrate && m.state.Bitrate > 0 {
		c := rungColors[min(len(rungColors)-1, m.state.Ladder.Rung(m.state.Bitrate))]
		parts = append(parts, style.Fg(c)(util.FormatBitrate(m.state.Bitrate)))
	}

	switch m.state.Manifest {
	case manifest.Fetching:
		parts = append(parts, style.Faint(icon.Get(icon.Progress)+" loading resolutions"))
	case manifest.Failed:
		parts = append(parts, style.Faint("no resolution ladder"))
	case manifest.Success:
		if m.opts.ShowResolutions && len(m.state.Ladder) > 1 {
			parts = append(parts, style.Faint(m.selectedLabel()))
		}
	}

	return strings.Join(parts, style.Faint(" · "))
}

func (m *model) selectedLabel() string {
	if m.state.Selected == playback.Automatic || m.state.Selected >= len(m.state.Ladder) {
		return "Automatic"
	}
	return m.state.Ladder[m.state.Selected].Label()
}

func (m *model) viewResolutions() []string {
	labels := []string{"Automatic"}
	for _, option := range m.state.Ladder {
		labels = append(labels, option.String())
	}

	lines := make([]string, len(labels))
	for i, label := range labels {
		marker := "  "
		if i == m.cursor {
			marker = style.Fg(color.Purple)("> ")
		}

		if i == m.state.Selected+1 {
			label = style.Fg(color.Green)(label + " " + icon.Get(icon.Success))
		}

		lines[i] = marker + label
	}
	return lines
}

func (m *model) renderLines(lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if m.height > h+3 {
		l += strings.Repeat("\n", m.height-h-3)
	}
	l += "\n" + m.helpC.View(m.keymap)

	return paddingStyle.Render(l)
}
