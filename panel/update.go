package panel

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/panorama-cli/panorama/playback"
)

type stateMsg playback.State

type closedMsg struct{}

type errMsg struct {
	err error
}

func (m *model) Init() tea.Cmd {
	return m.waitForState()
}

func (m *model) waitForState() tea.Cmd {
	updates := m.controls.Updates()
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return stateMsg(s)
	}
}

// do runs fn off the update loop and reports a failure as errMsg.
func (m *model) do(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.helpC.Width = msg.Width
		return m, nil
	case stateMsg:
		m.applyState(playback.State(msg))
		return m, m.waitForState()
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case errMsg:
		m.err = msg.err
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *model) applyState(s playback.State) {
	if !s.ResolutionPanelVisible || !m.state.ResolutionPanelVisible {
		m.cursor = s.Selected + 1
	}
	m.state = s
	m.keymap.resolutionsOpen = s.ResolutionPanelVisible && m.opts.ShowResolutions
	m.keymap.scrubbing = m.scrubbing
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keymap

	switch {
	case key.Matches(msg, k.forceQuit), key.Matches(msg, k.quit):
		return tea.Quit
	case key.Matches(msg, k.showHelp):
		m.helpC.ShowAll = !m.helpC.ShowAll
		return nil
	}

	if m.scrubbing {
		return m.handleScrubKey(msg)
	}

	if k.resolutionsOpen {
		switch {
		case key.Matches(msg, k.up):
			m.cursor = max(0, m.cursor-1)
			return nil
		case key.Matches(msg, k.down):
			m.cursor = min(len(m.state.Ladder), m.cursor+1)
			return nil
		case key.Matches(msg, k.confirm):
			index := m.cursor - 1
			return m.do(func() error { return m.controls.SelectResolutionOption(index) })
		}
	}

	switch {
	case key.Matches(msg, k.playPause):
		return m.do(m.controls.TogglePlayback)
	case key.Matches(msg, k.skipForward):
		return m.do(m.controls.SkipForward)
	case key.Matches(msg, k.skipBackward):
		return m.do(m.controls.SkipBackward)
	case key.Matches(msg, k.scrubForward):
		return m.startScrub(m.opts.ScrubStep)
	case key.Matches(msg, k.scrubBackward):
		return m.startScrub(-m.opts.ScrubStep)
	case key.Matches(msg, k.togglePanel):
		return m.do(m.controls.ToggleControlPanel)
	case key.Matches(msg, k.toggleResolutions):
		if !m.opts.ShowResolutions {
			return nil
		}
		return m.do(m.controls.ToggleResolutionPanel)
	}

	// any other key counts as interaction and brings the panel back
	return m.do(m.controls.ShowControlPanel)
}

func (m *model) startScrub(delta float64) tea.Cmd {
	if !m.state.IsLoaded() {
		return nil
	}

	m.scrubbing = true
	m.keymap.scrubbing = true
	m.scrubFrom = m.state.CurrentTime
	m.scrubTo = m.clamp(m.state.CurrentTime + delta)

	target := m.scrubTo
	return m.do(func() error {
		if err := m.controls.SetScrubState(playback.ScrubStarted); err != nil {
			return err
		}
		return m.controls.SetCurrentTime(target)
	})
}

func (m *model) handleScrubKey(msg tea.KeyMsg) tea.Cmd {
	k := m.keymap

	switch {
	case key.Matches(msg, k.scrubForward):
		m.scrubTo = m.clamp(m.scrubTo + m.opts.ScrubStep)
	case key.Matches(msg, k.scrubBackward):
		m.scrubTo = m.clamp(m.scrubTo - m.opts.ScrubStep)
	case key.Matches(msg, k.commitScrub):
		m.scrubbing = false
		m.keymap.scrubbing = false
		return m.do(func() error { return m.controls.SetScrubState(playback.ScrubEnded) })
	case key.Matches(msg, k.cancelScrub):
		// ending at the position playback already had is a seek in place
		m.scrubbing = false
		m.keymap.scrubbing = false
		from := m.scrubFrom
		return m.do(func() error {
			if err := m.controls.SetCurrentTime(from); err != nil {
				return err
			}
			return m.controls.SetScrubState(playback.ScrubEnded)
		})
	default:
		return nil
	}

	target := m.scrubTo
	return m.do(func() error { return m.controls.SetCurrentTime(target) })
}

func (m *model) clamp(t float64) float64 {
	t = max(0, t)
	if m.state.Duration > 0 {
		t = min(m.state.Duration, t)
	}
	return t
}
