// Package panel is the terminal control panel for a playback.Controller.
package panel

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/panorama-cli/panorama/playback"
)

// Controls is the part of playback.Controller the panel drives.
type Controls interface {
	Updates() <-chan playback.State
	TogglePlayback() error
	SkipForward() error
	SkipBackward() error
	SetScrubState(playback.ScrubState) error
	SetCurrentTime(float64) error
	SelectResolutionOption(int) error
	ToggleControlPanel() error
	ShowControlPanel() error
	ToggleResolutionPanel() error
}

type model struct {
	controls Controls
	opts     Options
	keymap   *keymap

	state  playback.State
	closed bool
	err    error

	// scrubbing is the panel's own drag; scrubTo is the pending position
	scrubbing bool
	scrubFrom float64
	scrubTo   float64

	// cursor over the resolution list; 0 is automatic, i+1 is ladder[i]
	cursor int

	width, height int

	progressC progress.Model
	helpC     help.Model
}

// New returns the panel model for controls.
func New(controls Controls, opts Options) tea.Model {
	return newModel(controls, opts)
}

func newModel(controls Controls, opts Options) *model {
	return &model{
		controls: controls,
		opts:     opts,
		keymap:   newKeymap(opts.SkipInterval),
		progressC: progress.New(
			progress.WithSolidFill(opts.Tint.Hex()),
			progress.WithoutPercentage(),
		),
		helpC: help.New(),
		width: 80,
	}
}

// Run shows the panel until the user quits or the controller closes.
func Run(controls Controls, opts Options) error {
	var programOptions []tea.ProgramOption
	if opts.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(New(controls, opts), programOptions...).Run()
	if err != nil {
		return err
	}

	if m, ok := final.(*model); ok && m.err != nil && !m.closed {
		return m.err
	}
	return nil
}
