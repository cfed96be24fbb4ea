// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Decode Engine - these keys configure the external player process and how it is polled.
const (
	Player              = "player.default"
	PlayerSkipInterval  = "player.skip_interval"
	PlayerTickInterval  = "player.tick_interval_ms"
	PlayerPeakBitrate   = "player.peak_bitrate"
	PlayerForwardBuffer = "player.forward_buffer"
)

// Control Panel - these keys govern visibility rules and the look of the playback controls.
const (
	PanelAutoHideSeconds = "panel.auto_hide_seconds"
	PanelShowBitrate     = "panel.show_bitrate"
	PanelShowResolutions = "panel.show_resolutions"
	PanelScrubberTint    = "panel.scrubber_tint"
)

// Video Screen - these keys shape the projection geometry handed to the renderer.
const (
	ScreenSphereRadius   = "screen.sphere_radius"
	ScreenFallbackFOV    = "screen.fallback_fov"
	ScreenCameraDistance = "screen.camera_distance"
	ScreenPlaneOffset    = "screen.plane_offset"
)

// Asset Probing - these keys configure how dimensions and field of view are read from media.
const (
	ProbeEnabled     = "probe.enabled"
	ProbeFFProbePath = "probe.ffprobe_path"
)

// Manifest Retrieval.
const (
	ManifestTimeoutSeconds = "manifest.timeout_seconds"
)

// History Tracking - these keys configure the persistence of resume positions.
const (
	HistorySave = "history.save"
)

// Iconography.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
