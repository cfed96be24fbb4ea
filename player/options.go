package player

import (
	"time"

	"github.com/panorama-cli/panorama/key"
	"github.com/spf13/viper"
)

// Options configure the mpv backend.
type Options struct {
	// Binary is the mpv executable.
	Binary string
	// TickInterval is how often time-pos and video-bitrate are polled.
	TickInterval time.Duration
	// PeakBitrate caps the HLS variant mpv picks on its own, in bits per second. Zero means no cap.
	PeakBitrate int
	// ForwardBuffer is how many seconds mpv caches ahead. Zero keeps mpv's default.
	ForwardBuffer int
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Binary:        "mpv",
		TickInterval:  100 * time.Millisecond,
		PeakBitrate:   200_000_000,
		ForwardBuffer: 60,
	}
}

// OptionsFromConfig reads the player.* keys.
func OptionsFromConfig() Options {
	opts := Options{
		Binary:        viper.GetString(key.Player),
		TickInterval:  time.Duration(viper.GetInt(key.PlayerTickInterval)) * time.Millisecond,
		PeakBitrate:   viper.GetInt(key.PlayerPeakBitrate),
		ForwardBuffer: viper.GetInt(key.PlayerForwardBuffer),
	}

	defaults := DefaultOptions()
	if opts.Binary == "" {
		opts.Binary = defaults.Binary
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaults.TickInterval
	}
	return opts
}
