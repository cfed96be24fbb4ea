package playback

import (
	"context"
	"time"

	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/manifest"
	"github.com/panorama-cli/panorama/network"
	"github.com/panorama-cli/panorama/probe"
	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/stream"
	"github.com/spf13/viper"
)

// Prober reads dimensions and field of view from a media asset.
type Prober interface {
	Probe(ctx context.Context, url string) (probe.Info, error)
}

// Renderer receives the geometry for the current video. Present is called from the
// controller goroutine and must not call back into the controller.
type Renderer interface {
	Present(geometry projection.Geometry)
}

// Options configure a Controller.
type Options struct {
	// AutoHide is how long the control panel stays up without interaction. Zero disables it.
	AutoHide time.Duration
	// SkipInterval in seconds for SkipForward and SkipBackward.
	SkipInterval float64
	// SphereRadius of spherical geometry.
	SphereRadius float64
	// PlaneOffset pushes flat videos back beyond the camera distance.
	PlaneOffset float64
	// CameraDistance for streams opened without metadata declaring one.
	CameraDistance float64
	// ManifestTimeout bounds the playlist fetch. Zero means no timeout.
	ManifestTimeout time.Duration

	Clock    Clock
	Fetcher  manifest.Fetcher
	Prober   Prober
	Renderer Renderer
}

// DefaultOptions matches the configuration defaults without any collaborators.
func DefaultOptions() Options {
	return Options{
		AutoHide:        10 * time.Second,
		SkipInterval:    15,
		SphereRadius:    2,
		PlaneOffset:     30,
		CameraDistance:  stream.DefaultCameraDistance,
		ManifestTimeout: 30 * time.Second,
		Clock:           SystemClock,
	}
}

// OptionsFromConfig reads the configuration and wires the network fetcher and, when
// probing is enabled, ffprobe.
func OptionsFromConfig() Options {
	opts := Options{
		AutoHide:        time.Duration(viper.GetInt(key.PanelAutoHideSeconds)) * time.Second,
		SkipInterval:    float64(viper.GetInt(key.PlayerSkipInterval)),
		SphereRadius:    viper.GetFloat64(key.ScreenSphereRadius),
		PlaneOffset:     viper.GetFloat64(key.ScreenPlaneOffset),
		CameraDistance:  viper.GetFloat64(key.ScreenCameraDistance),
		ManifestTimeout: time.Duration(viper.GetInt(key.ManifestTimeoutSeconds)) * time.Second,
		Clock:           SystemClock,
		Fetcher:         network.NewFetcher(),
	}

	if viper.GetBool(key.ProbeEnabled) {
		opts.Prober = probe.NewFFProbe()
	}

	return opts
}
