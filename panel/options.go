package panel

import (
	"github.com/panorama-cli/panorama/config"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/log"
	"github.com/spf13/viper"
)

// Options configure the control panel.
type Options struct {
	ShowBitrate     bool
	ShowResolutions bool
	// ScrubStep in seconds moved by one scrub key press.
	ScrubStep float64
	// SkipInterval is only used for the help text; the controller does the skipping.
	SkipInterval float64
	Tint         config.Tint
	// AltScreen runs the panel in the terminal's alternate screen.
	AltScreen bool
}

// DefaultOptions shows everything with the default tint.
func DefaultOptions() Options {
	return Options{
		ShowBitrate:     true,
		ShowResolutions: true,
		ScrubStep:       5,
		SkipInterval:    15,
		Tint:            config.DefaultTint,
		AltScreen:       true,
	}
}

// OptionsFromConfig reads the panel keys. An invalid tint falls back to the default with a warning.
func OptionsFromConfig() Options {
	opts := DefaultOptions()
	opts.ShowBitrate = viper.GetBool(key.PanelShowBitrate)
	opts.ShowResolutions = viper.GetBool(key.PanelShowResolutions)
	opts.SkipInterval = float64(viper.GetInt(key.PlayerSkipInterval))

	tint, err := config.ParseTint(viper.GetString(key.PanelScrubberTint))
	if err != nil {
		log.Warnf("%s: %v, using %s", key.PanelScrubberTint, err, config.DefaultTint.Hex())
	} else {
		opts.Tint = tint
	}

	return opts
}
