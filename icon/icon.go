// Package icon renders UI symbols in the variant chosen by icons.variant.
package icon

import (
	"github.com/panorama-cli/panorama/key"
	"github.com/spf13/viper"
)

const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns every supported variant name.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Play
	Pause
	Buffering
	Ended
	Scrub
	Sphere
)

type iconDef struct {
	emoji string
	nerd  string
	plain string
}

func (d iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

var icons = map[Icon]iconDef{
	Success:   {emoji: "✅", nerd: "", plain: "+"},
	Fail:      {emoji: "❌", nerd: "", plain: "x"},
	Progress:  {emoji: "⏳", nerd: "", plain: "..."},
	Play:      {emoji: "▶️", nerd: "", plain: ">"},
	Pause:     {emoji: "⏸️", nerd: "", plain: "||"},
	Buffering: {emoji: "🔄", nerd: "", plain: "~"},
	Ended:     {emoji: "⏹️", nerd: "", plain: "[]"},
	Scrub:     {emoji: "↔️", nerd: "", plain: "<>"},
	Sphere:    {emoji: "🌐", nerd: "", plain: "o"},
}

// Get returns the symbol for i in the configured variant.
func Get(i Icon) string {
	return icons[i].get()
}
