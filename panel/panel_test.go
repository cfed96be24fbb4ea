package panel

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/panorama-cli/panorama/config"
	"github.com/panorama-cli/panorama/key"
	"github.com/panorama-cli/panorama/manifest"
	"github.com/panorama-cli/panorama/playback"
	"github.com/panorama-cli/panorama/stream"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

type fakeControls struct {
	updates chan playback.State
	calls   []string
	scrubs  []playback.ScrubState
	times   []float64
	indexes []int
	err     error
}

func newFakeControls() *fakeControls {
	return &fakeControls{updates: make(chan playback.State, 1)}
}

func (f *fakeControls) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeControls) Updates() <-chan playback.State { return f.updates }
func (f *fakeControls) TogglePlayback() error          { return f.record("toggle") }
func (f *fakeControls) SkipForward() error             { return f.record("forward") }
func (f *fakeControls) SkipBackward() error            { return f.record("backward") }
func (f *fakeControls) ToggleControlPanel() error      { return f.record("panel") }
func (f *fakeControls) ShowControlPanel() error        { return f.record("show") }
func (f *fakeControls) ToggleResolutionPanel() error   { return f.record("resolutions") }

func (f *fakeControls) SetScrubState(s playback.ScrubState) error {
	f.scrubs = append(f.scrubs, s)
	return f.record("scrub")
}

func (f *fakeControls) SetCurrentTime(t float64) error {
	f.times = append(f.times, t)
	return f.record("time")
}

func (f *fakeControls) SelectResolutionOption(index int) error {
	f.indexes = append(f.indexes, index)
	return f.record("select")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends msg and runs the resulting command, returning its message.
func press(m *model, msg tea.Msg) tea.Msg {
	_, cmd := m.Update(msg)
	if cmd == nil {
		return nil
	}
	return cmd()
}

func playingState() playback.State {
	return playback.State{
		Title:               "Lake",
		Details:             "Sunrise over the water",
		SourceURL:           "https://cdn.example.com/lake/master.m3u8",
		Duration:            300,
		CurrentTime:         60,
		AspectRatio:         2,
		HorizontalFOV:       360,
		Projection:          "spherical",
		ControlPanelVisible: true,
		Selected:            playback.Automatic,
		HasManifest:         true,
		Manifest:            manifest.Success,
		Bitrate:             19_500_000,
		Ladder: stream.Ladder{
			{Width: 3840, Height: 1920, Bitrate: 20_000_000, URL: "4k.m3u8"},
			{Width: 1920, Height: 1080, Bitrate: 5_000_000, URL: "1080.m3u8"},
			{Width: 1280, Height: 720, Bitrate: 2_500_000, URL: "720.m3u8"},
		},
	}
}

func TestModel(t *testing.T) {
	Convey("Given a panel showing a playing stream", t, func() {
		controls := newFakeControls()
		m := newModel(controls, DefaultOptions())
		m.Update(stateMsg(playingState()))

		Convey("State updates are applied and the next one is awaited", func() {
			s := playingState()
			s.CurrentTime = 61
			_, cmd := m.Update(stateMsg(s))
			So(m.state.CurrentTime, ShouldEqual, 61.0)
			So(cmd, ShouldNotBeNil)

			controls.updates <- s
			So(cmd(), ShouldResemble, stateMsg(s))
		})

		Convey("A closed controller quits the panel", func() {
			close(controls.updates)
			msg := m.waitForState()()
			So(msg, ShouldResemble, closedMsg{})

			_, cmd := m.Update(msg)
			So(m.closed, ShouldBeTrue)
			So(cmd(), ShouldResemble, tea.Quit())
		})

		Convey("Playback keys reach the controller", func() {
			So(press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}), ShouldBeNil)
			So(press(m, tea.KeyMsg{Type: tea.KeyRight}), ShouldBeNil)
			So(press(m, tea.KeyMsg{Type: tea.KeyLeft}), ShouldBeNil)
			So(press(m, tea.KeyMsg{Type: tea.KeyTab}), ShouldBeNil)
			So(press(m, runes("x")), ShouldBeNil)
			So(controls.calls, ShouldResemble, []string{"toggle", "forward", "backward", "panel", "show"})
		})

		Convey("Errors are kept and shown", func() {
			controls.err = errors.New("mpv is gone")
			msg := press(m, runes("l"))
			So(msg, ShouldResemble, errMsg{controls.err})

			m.Update(msg)
			So(m.View(), ShouldContainSubstring, "mpv is gone")
		})

		Convey("Scrubbing moves a pending position and seeks on enter", func() {
			press(m, runes("."))
			So(m.scrubbing, ShouldBeTrue)
			So(controls.scrubs, ShouldResemble, []playback.ScrubState{playback.ScrubStarted})

			press(m, runes("."))
			press(m, runes(","))
			press(m, runes("."))
			So(controls.times, ShouldResemble, []float64{65, 70, 65, 70})

			press(m, tea.KeyMsg{Type: tea.KeyEnter})
			So(m.scrubbing, ShouldBeFalse)
			So(controls.scrubs, ShouldResemble, []playback.ScrubState{playback.ScrubStarted, playback.ScrubEnded})
		})

		Convey("Cancelling a scrub returns to where it started", func() {
			press(m, runes("."))
			s := playingState()
			s.CurrentTime = 65
			s.Scrub = playback.ScrubStarted
			m.Update(stateMsg(s))

			press(m, tea.KeyMsg{Type: tea.KeyEsc})
			So(controls.times, ShouldResemble, []float64{65, 60})
			So(controls.scrubs[len(controls.scrubs)-1], ShouldEqual, playback.ScrubEnded)
		})

		Convey("Scrubbing stays inside the media", func() {
			s := playingState()
			s.CurrentTime = 298
			m.Update(stateMsg(s))

			press(m, runes("."))
			So(controls.times, ShouldResemble, []float64{300})
		})

		Convey("With the resolution panel open", func() {
			s := playingState()
			s.ResolutionPanelVisible = true
			m.Update(stateMsg(s))

			Convey("The cursor starts on the selected option", func() {
				So(m.cursor, ShouldEqual, 0)
				So(m.View(), ShouldContainSubstring, "Automatic")
				So(m.View(), ShouldContainSubstring, "4K (20 Mbps)")
			})

			Convey("Enter selects the option under the cursor", func() {
				press(m, tea.KeyMsg{Type: tea.KeyDown})
				press(m, tea.KeyMsg{Type: tea.KeyDown})
				press(m, tea.KeyMsg{Type: tea.KeyEnter})
				So(controls.indexes, ShouldResemble, []int{1})
			})

			Convey("The cursor stops at both ends", func() {
				press(m, tea.KeyMsg{Type: tea.KeyUp})
				So(m.cursor, ShouldEqual, 0)
				for i := 0; i < 10; i++ {
					press(m, tea.KeyMsg{Type: tea.KeyDown})
				}
				So(m.cursor, ShouldEqual, 3)
			})
		})
	})
}

func TestView(t *testing.T) {
	Convey("Given a panel", t, func() {
		m := newModel(newFakeControls(), DefaultOptions())
		m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})

		Convey("An idle panel says so", func() {
			So(m.View(), ShouldContainSubstring, "Nothing is playing")
		})

		Convey("A playing stream shows its time, geometry and bitrate", func() {
			m.Update(stateMsg(playingState()))
			view := m.View()
			So(view, ShouldContainSubstring, "Lake")
			So(view, ShouldContainSubstring, "1:00 / 5:00")
			So(view, ShouldContainSubstring, "spherical 360°×180°")
			So(view, ShouldContainSubstring, "19.5 Mbps")
		})

		Convey("The bitrate readout can be turned off", func() {
			m.opts.ShowBitrate = false
			m.Update(stateMsg(playingState()))
			So(m.View(), ShouldNotContainSubstring, "Mbps")
		})

		Convey("A hidden panel only offers to come back", func() {
			s := playingState()
			s.ControlPanelVisible = false
			m.Update(stateMsg(s))
			view := m.View()
			So(view, ShouldContainSubstring, "show controls")
			So(view, ShouldNotContainSubstring, "1:00 / 5:00")
		})
	})
}

func TestOptionsFromConfig(t *testing.T) {
	Convey("Given panel configuration", t, func() {
		Reset(viper.Reset)
		viper.Set(key.PanelShowBitrate, false)
		viper.Set(key.PanelShowResolutions, true)
		viper.Set(key.PlayerSkipInterval, 10)

		Convey("A valid tint is used", func() {
			viper.Set(key.PanelScrubberTint, "#00FF00")
			opts := OptionsFromConfig()
			So(opts.ShowBitrate, ShouldBeFalse)
			So(opts.SkipInterval, ShouldEqual, 10.0)
			So(opts.Tint, ShouldResemble, config.Tint{G: 0xFF, A: 0xFF})
		})

		Convey("An invalid tint falls back to the default", func() {
			viper.Set(key.PanelScrubberTint, "green")
			So(OptionsFromConfig().Tint, ShouldResemble, config.DefaultTint)
		})
	})
}
