package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/panorama-cli/panorama/color"
	"github.com/panorama-cli/panorama/constant"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.Panorama + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON includes both the current and the default value.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.TypeName(),
	})
}

// TypeName returns the name of the field's underlying value type.
func (f *Field) TypeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc}
		EnvExposed = append(EnvExposed, k)
	}

	register(key.Player, "mpv", "Decode engine to drive. Only mpv exposes the IPC needed for playback control")
	register(key.PlayerSkipInterval, 15, "Seconds to jump when skipping forward or backward")
	register(key.PlayerTickInterval, 100, "Milliseconds between playback position updates")
	register(key.PlayerPeakBitrate, 200_000_000, "Upper bound in bits per second for adaptive variant selection.\n0 disables the cap")
	register(key.PlayerForwardBuffer, 60, "Seconds of media the engine should try to buffer ahead")
	register(key.PanelAutoHideSeconds, 10, "Seconds of inactivity before the control panel hides during playback")
	register(key.PanelShowBitrate, true, "Show the bitrate readout for streams")
	register(key.PanelShowResolutions, true, "Show the resolution selector for streams")
	register(key.PanelScrubberTint, "#FFA500B3", "Scrubber color in the #RRGGBB or #RRGGBBAA format")
	register(key.ScreenSphereRadius, 2.0, "Radius of the video sphere in meters")
	register(key.ScreenFallbackFOV, 180.0, "Horizontal field of view in degrees used when the media does not declare one")
	register(key.ScreenCameraDistance, 50.0, "Camera distance used for flat (rectilinear) videos")
	register(key.ScreenPlaneOffset, 30.0, "Extra distance pushed behind the camera distance for flat videos")
	register(key.ProbeEnabled, true, "Probe media with ffprobe for dimensions and field of view")
	register(key.ProbeFFProbePath, "ffprobe", "Path to the ffprobe executable")
	register(key.ManifestTimeoutSeconds, 30, "Timeout for fetching HLS manifests")
	register(key.HistorySave, true, "Remember the playback position of each stream")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, nerd, plain")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Check for a newer release when printing the version")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(color.Blue),
	"purple":   style.Fg(color.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))
