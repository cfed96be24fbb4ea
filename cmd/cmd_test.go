package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/panorama-cli/panorama/config"
	"github.com/panorama-cli/panorama/filesystem"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/playback"
	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/stream"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestRenderState(t *testing.T) {
	Convey("Given plain icons", t, func() {
		viper.Set(key.IconsVariant, "plain")
		Reset(viper.Reset)

		s := playback.State{CurrentTime: 60, Duration: 300}

		Convey("A playing stream shows its position", func() {
			So(renderState(s), ShouldEqual, "> 1:00 / 5:00")
		})

		Convey("Bitrate and buffering are appended", func() {
			s.Bitrate = 19_500_000
			s.Buffering = true
			So(renderState(s), ShouldEqual, "~ 1:00 / 5:00  19.5 Mbps  buffering")
		})

		Convey("The end wins over pause", func() {
			s.Paused, s.HasReachedEnd = true, true
			So(renderState(s), ShouldStartWith, "[]")
		})
	})
}

func TestReportHeadless(t *testing.T) {
	Convey("Given a stream of updates", t, func() {
		viper.Set(key.IconsVariant, "plain")
		Reset(viper.Reset)

		updates := make(chan playback.State, 4)
		updates <- playback.State{CurrentTime: 1, Duration: 10}
		updates <- playback.State{CurrentTime: 1.5, Duration: 10}
		updates <- playback.State{CurrentTime: 10, Duration: 10, HasReachedEnd: true, Paused: true}
		updates <- playback.State{CurrentTime: 0, Duration: 10}

		var out bytes.Buffer
		reportHeadless(context.Background(), &out, updates)

		Convey("Repeated lines are skipped and the end stops reporting", func() {
			So(out.String(), ShouldEqual, "> 0:01 / 0:10\n[] 0:10 / 0:10\n")
			So(len(updates), ShouldEqual, 1)
		})
	})

	Convey("A closed channel stops reporting", t, func() {
		updates := make(chan playback.State)
		close(updates)

		var out bytes.Buffer
		reportHeadless(context.Background(), &out, updates)
		So(out.String(), ShouldBeBlank)
	})
}

func TestMetadataFromFlags(t *testing.T) {
	Convey("Given the play flags", t, func() {
		viper.Set(key.ScreenCameraDistance, 50.0)
		Reset(viper.Reset)

		cmd := &cobra.Command{}
		addPlayFlags(cmd)

		Convey("No flags means no metadata", func() {
			metadata, err := metadataFromFlags(cmd)
			So(err, ShouldBeNil)
			So(metadata.IsAbsent(), ShouldBeTrue)
		})

		Convey("Declared values become metadata", func() {
			So(cmd.Flags().Set("projection", "equirectangular"), ShouldBeNil)
			So(cmd.Flags().Set("fov", "360"), ShouldBeNil)

			metadata, err := metadataFromFlags(cmd)
			So(err, ShouldBeNil)

			m := metadata.MustGet()
			So(m.Projection, ShouldEqual, projection.Spherical)
			So(m.FieldOfView.MustGet(), ShouldEqual, 360.0)
			So(m.CameraDistance, ShouldEqual, 50.0)
		})

		Convey("An unknown projection is an error", func() {
			So(cmd.Flags().Set("projection", "cubemap"), ShouldBeNil)
			_, err := metadataFromFlags(cmd)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRenderLadder(t *testing.T) {
	Convey("Each option is one row", t, func() {
		out := renderLadder(stream.Ladder{
			{Width: 3840, Height: 2160, Bitrate: 20_000_000, URL: "https://cdn.example.com/4k.m3u8"},
			{Width: 1280, Height: 720, Bitrate: 800_000, URL: "https://cdn.example.com/720.m3u8"},
		})

		So(out, ShouldContainSubstring, "4K")
		So(out, ShouldContainSubstring, "3840x2160")
		So(out, ShouldContainSubstring, "20 Mbps")
		So(out, ShouldContainSubstring, "800 Kbps")
		So(bytes.Count([]byte(out), []byte("\n")), ShouldEqual, 2)
	})
}

func TestSchema(t *testing.T) {
	Convey("Every target reflects to a schema", t, func() {
		for _, target := range schemaTargets {
			data, err := json.Marshal(reflectSchema(target))
			So(err, ShouldBeNil)
			So(data, ShouldNotBeEmpty)
		}
	})

	Convey("The state schema lists its fields", t, func() {
		data, err := json.Marshal(reflectSchema(schemaTargets["state"]))
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, "currentTime")
		So(string(data), ShouldContainSubstring, "horizontalFov")
	})
}

func TestMeshRenderer(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		Reset(filesystem.SetOsFs)

		geometry, err := projection.Build(projection.Params{
			Kind:           projection.Spherical,
			HorizontalFOV:  360,
			VerticalFOV:    180,
			AspectRatio:    2,
			CameraDistance: 50,
			Radius:         2,
		})
		So(err, ShouldBeNil)

		Convey("Presented geometry is written as JSON", func() {
			meshRenderer{path: "/mesh.json"}.Present(geometry)

			data, err := filesystem.API().ReadFile("/mesh.json")
			So(err, ShouldBeNil)

			var decoded projection.Geometry
			So(json.Unmarshal(data, &decoded), ShouldBeNil)
			So(decoded.Kind, ShouldEqual, projection.Spherical)
			So(decoded.Mesh.VertexCount(), ShouldEqual, geometry.Mesh.VertexCount())
		})

		Convey("Without a path nothing is written", func() {
			meshRenderer{}.Present(geometry)
			exists, err := filesystem.API().Exists("/mesh.json")
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})
	})
}

func TestEnvName(t *testing.T) {
	Convey("Keys map to prefixed upper case variables", t, func() {
		So(envName(key.PanelScrubberTint), ShouldEqual, "PANORAMA_PANEL_SCRUBBER_TINT")
	})
}

func TestConfigValues(t *testing.T) {
	Convey("Given registered fields", t, func() {
		Convey("Values take the type of the default", func() {
			v, err := parseValue(config.Default[key.PlayerSkipInterval], []string{"30"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 30)

			v, err = parseValue(config.Default[key.ScreenCameraDistance], []string{"12.5"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 12.5)

			v, err = parseValue(config.Default[key.PanelShowBitrate], []string{"false"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)
		})

		Convey("Unparsable values are rejected", func() {
			_, err := parseValue(config.Default[key.PlayerSkipInterval], []string{"soon"})
			So(err, ShouldNotBeNil)

			_, err = parseValue(config.Default[key.PlayerSkipInterval], nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Validators reject values the runtime would ignore", func() {
			_, err := parseValue(config.Default[key.PanelScrubberTint], []string{"orange"})
			So(err, ShouldNotBeNil)

			_, err = parseValue(config.Default[key.ScreenFallbackFOV], []string{"400"})
			So(err, ShouldNotBeNil)

			v, err := parseValue(config.Default[key.PanelScrubberTint], []string{"#00FF00"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "#00FF00")
		})

		Convey("A misspelled key suggests the closest one", func() {
			_, err := lookupField("panel.show_bitrat")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.PanelShowBitrate)
		})

		Convey("Keys group by their first segment", func() {
			So(section(key.ScreenSphereRadius), ShouldEqual, "screen")
		})
	})
}
