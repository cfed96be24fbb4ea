package panel

import "github.com/charmbracelet/bubbles/key"

type keymap struct {
	quit, forceQuit,
	playPause,
	skipForward, skipBackward,
	scrubForward, scrubBackward, commitScrub, cancelScrub,
	togglePanel, toggleResolutions,
	up, down, confirm,
	showHelp key.Binding

	resolutionsOpen bool
	scrubbing       bool
}

func newKeymap(skipInterval float64) *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "play/pause"),
		),
		skipForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", skipHelp("+", skipInterval)),
		),
		skipBackward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", skipHelp("-", skipInterval)),
		),
		scrubForward: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "scrub forward"),
		),
		scrubBackward: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "scrub back"),
		),
		commitScrub: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "seek"),
		),
		cancelScrub: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		togglePanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "controls"),
		),
		toggleResolutions: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resolution"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func skipHelp(sign string, seconds float64) string {
	return sign + formatSeconds(seconds)
}

func (k *keymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch {
	case k.scrubbing:
		return h(k.scrubBackward, k.scrubForward, k.commitScrub, k.cancelScrub),
			h(k.scrubBackward, k.scrubForward, k.commitScrub, k.cancelScrub, k.forceQuit)
	case k.resolutionsOpen:
		return h(k.up, k.down, k.confirm, k.toggleResolutions),
			h(k.up, k.down, k.confirm, k.toggleResolutions, k.forceQuit)
	default:
		return h(k.playPause, k.skipBackward, k.skipForward, k.showHelp, k.quit),
			h(k.playPause, k.skipBackward, k.skipForward, k.scrubBackward, k.scrubForward, k.togglePanel, k.toggleResolutions, k.quit)
	}
}

func (k *keymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *keymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
