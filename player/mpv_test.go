package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeMPV answers JSON-IPC commands on a unix socket the way mpv does,
// including unsolicited event broadcasts ahead of each reply. A loadfile takes
// loadDelay to complete, and seeks are refused until it has.
type fakeMPV struct {
	path     string
	listener net.Listener

	mu         sync.Mutex
	commands   [][]any
	properties map[string]any
	loadDelay  time.Duration
	loading    bool
	rejected   int
	observers  []func(v any)
}

func newFakeMPV(t *testing.T, properties map[string]any) *fakeMPV {
	path := filepath.Join(t.TempDir(), "mpv.sock")
	listener, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}

	f := &fakeMPV{path: path, listener: listener, properties: properties}
	go f.accept()
	return f
}

func (f *fakeMPV) accept() {
	for {
		conn, err := f.listener.Accept()
		if err != nil {
			return
		}
		go f.serve(conn)
	}
}

func (f *fakeMPV) serve(conn net.Conn) {
	defer conn.Close()

	var writeMu sync.Mutex
	write := func(v any) {
		writeMu.Lock()
		defer writeMu.Unlock()
		payload, _ := json.Marshal(v)
		_, _ = conn.Write(append(payload, '\n'))
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil || len(cmd.Command) == 0 {
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, cmd.Command)
		f.mu.Unlock()

		write(map[string]any{"event": "idle"})

		name, _ := cmd.Command[0].(string)
		switch name {
		case "get_property":
			value, ok := f.properties[cmd.Command[1].(string)]
			if !ok {
				write(ipcResponse{Error: "property unavailable", RequestID: cmd.RequestID})
				continue
			}
			write(ipcResponse{Data: value, Error: "success", RequestID: cmd.RequestID})
		case "loadfile":
			f.mu.Lock()
			f.loading = true
			delay := f.loadDelay
			f.mu.Unlock()

			write(ipcResponse{Error: "success", RequestID: cmd.RequestID})
			time.AfterFunc(delay, f.finishLoad)
		case "seek":
			f.mu.Lock()
			loading := f.loading
			if loading {
				f.rejected++
			}
			f.mu.Unlock()

			if loading {
				write(ipcResponse{Error: "error running command", RequestID: cmd.RequestID})
				continue
			}
			write(ipcResponse{Error: "success", RequestID: cmd.RequestID})
		case "observe_property":
			f.mu.Lock()
			f.observers = append(f.observers, write)
			f.mu.Unlock()

			write(ipcResponse{Error: "success", RequestID: cmd.RequestID})
			property := cmd.Command[2].(string)
			if value, ok := f.properties[property]; ok {
				write(map[string]any{"event": "property-change", "id": cmd.Command[1], "name": property, "data": value})
			}
		default:
			write(ipcResponse{Error: "success", RequestID: cmd.RequestID})
		}
	}
}

func (f *fakeMPV) finishLoad() {
	f.mu.Lock()
	f.loading = false
	observers := append([]func(any){}, f.observers...)
	f.mu.Unlock()

	for _, write := range observers {
		write(map[string]any{"event": "file-loaded"})
	}
}

func (f *fakeMPV) setLoadDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadDelay = d
}

func (f *fakeMPV) rejectedSeeks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rejected
}

func (f *fakeMPV) received() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.commands...)
}

func (f *fakeMPV) Close() {
	_ = f.listener.Close()
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("Accepts http URLs untouched", func() {
			target, err := sanitizeMediaTarget(" https://cdn.example.com/master.m3u8 ")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, "https://cdn.example.com/master.m3u8")
		})

		Convey("Turns file URLs into paths", func() {
			target, err := sanitizeMediaTarget("file:///videos/../videos/lake.mp4")
			So(err, ShouldBeNil)
			So(target, ShouldEqual, filepath.Clean("/videos/lake.mp4"))
		})

		Convey("Rejects flags, control characters and foreign schemes", func() {
			for _, bad := range []string{"", "--script=evil.lua", "a\nb", "rtmp://example.com/live"} {
				_, err := sanitizeMediaTarget(bad)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestArgs(t *testing.T) {
	Convey("Given an mpv engine", t, func() {
		m := NewMPV(DefaultOptions())
		m.socketPath = "/tmp/panorama-test.sock"

		Convey("Buffering and bitrate options are passed through", func() {
			args := m.args("lake.mp4")
			So(args, ShouldContain, "--input-ipc-server=/tmp/panorama-test.sock")
			So(args, ShouldContain, "--hls-bitrate=200000000")
			So(args, ShouldContain, "--cache-secs=60")
			So(args, ShouldContain, "--keep-open=yes")
			So(args[len(args)-1], ShouldEqual, "lake.mp4")
		})

		Convey("Zero values leave mpv's defaults alone", func() {
			m.opts.PeakBitrate, m.opts.ForwardBuffer = 0, 0
			for _, arg := range m.args("lake.mp4") {
				So(arg, ShouldNotStartWith, "--hls-bitrate")
				So(arg, ShouldNotStartWith, "--cache-secs")
			}
		})
	})
}

func TestEvents(t *testing.T) {
	Convey("Given a subscriber", t, func() {
		m := NewMPV(DefaultOptions())

		var events []Event
		cancel := m.Subscribe(func(e Event) { events = append(events, e) })

		Convey("Duration is forwarded", func() {
			m.handleProperty("duration", 95.5)
			So(events, ShouldResemble, []Event{DurationChanged{Seconds: 95.5}})
		})

		Convey("Cache stalls read as waiting, and only changes are reported", func() {
			m.handleProperty("paused-for-cache", true)
			m.handleProperty("paused-for-cache", true)
			m.handleProperty("paused-for-cache", false)
			m.handleProperty("pause", true)
			So(events, ShouldResemble, []Event{
				TimeControlChanged{Status: Waiting},
				TimeControlChanged{Status: Playing},
				TimeControlChanged{Status: Paused},
			})
		})

		Convey("Only a reached end is reported", func() {
			m.handleProperty("eof-reached", false)
			m.handleProperty("eof-reached", true)
			So(events, ShouldResemble, []Event{EndOfMedia{}})
		})

		Convey("Only a loaded or failed file settles a load", func() {
			m.beginLoad()
			m.handleProperty("end-file", map[string]any{"event": "end-file", "reason": "stop"})
			So(isLoaded(m), ShouldBeFalse)

			m.handleProperty("end-file", map[string]any{"event": "end-file", "reason": "error"})
			So(isLoaded(m), ShouldBeTrue)

			m.beginLoad()
			m.handleProperty("file-loaded", map[string]any{"event": "file-loaded"})
			So(isLoaded(m), ShouldBeTrue)
		})

		Convey("Cancelled subscribers stop receiving", func() {
			cancel()
			cancel()
			m.handleProperty("duration", 1.0)
			So(events, ShouldBeEmpty)
		})
	})

	Convey("Status names", t, func() {
		So(Waiting.String(), ShouldEqual, "waiting")
		So(TimeControlStatus(7).String(), ShouldEqual, "TimeControlStatus(7)")
	})
}

func TestIPC(t *testing.T) {
	Convey("Given a running mpv", t, func() {
		fake := newFakeMPV(t, map[string]any{"time-pos": 12.5, "duration": 120.0})
		Reset(fake.Close)

		m := NewMPV(DefaultOptions())
		m.socketPath = fake.path
		m.running.Store(true)

		Convey("Replies are matched past event broadcasts", func() {
			pos, err := m.Position()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 12.5)
		})

		Convey("Unavailable properties fail without retrying", func() {
			_, err := m.getFloatProperty("video-bitrate")
			So(errors.Is(err, errPropertyUnavailable), ShouldBeTrue)
			So(len(fake.received()), ShouldEqual, 1)
		})

		Convey("Commands reach mpv", func() {
			So(m.Pause(), ShouldBeNil)
			So(m.Seek(testContext(t), 42), ShouldBeNil)
			So(m.Unload(), ShouldBeNil)

			commands := fake.received()
			So(len(commands), ShouldEqual, 3)
			So(commands[0], ShouldResemble, []any{"set_property", "pause", true})
			So(commands[1], ShouldResemble, []any{"seek", 42.0, "absolute+exact"})
			So(commands[2], ShouldResemble, []any{"stop"})
		})

		Convey("Observed properties arrive on the listener connection", func() {
			changes := make(chan string, 8)
			listener := NewEventListener(fake.path, func(name string, _ any) {
				if name == "duration" {
					changes <- name
				}
			})
			So(listener.Start(), ShouldBeNil)
			Reset(listener.Stop)

			select {
			case name := <-changes:
				So(name, ShouldEqual, "duration")
			case <-time.After(2 * time.Second):
				So("no property change", ShouldBeEmpty)
			}
		})
	})

	Convey("A stopped engine refuses commands", t, func() {
		m := NewMPV(DefaultOptions())
		So(m.Play(), ShouldEqual, ErrNotRunning)
		_, err := m.Position()
		So(err, ShouldEqual, ErrNotRunning)
		So(m.Close(), ShouldBeNil)
	})
}

func isLoaded(m *MPV) bool {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	select {
	case <-m.loaded:
		return true
	default:
		return false
	}
}

func TestSourceSwitch(t *testing.T) {
	Convey("Given mpv replacing its source", t, func() {
		fake := newFakeMPV(t, map[string]any{"time-pos": 0.0})
		fake.setLoadDelay(500 * time.Millisecond)
		Reset(fake.Close)

		m := NewMPV(DefaultOptions())
		m.socketPath = fake.path
		m.running.Store(true)
		m.listener = NewEventListener(fake.path, m.handleProperty)
		So(m.listener.Start(), ShouldBeNil)
		Reset(m.listener.Stop)

		So(m.ReplaceSource(testContext(t), "https://cdn.example.com/lake/720.m3u8"), ShouldBeNil)

		Convey("A seek waits until the new file has loaded", func() {
			So(m.Seek(testContext(t), 42), ShouldBeNil)
			So(fake.rejectedSeeks(), ShouldEqual, 0)

			commands := fake.received()
			So(commands[len(commands)-1], ShouldResemble, []any{"seek", 42.0, "absolute+exact"})
		})

		Convey("A seek whose context ends first never reaches mpv", func() {
			ctx, cancel := context.WithTimeout(testContext(t), 50*time.Millisecond)
			defer cancel()

			err := m.Seek(ctx, 42)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			for _, command := range fake.received() {
				So(command[0], ShouldNotEqual, "seek")
			}
		})
	})

	Convey("Retries stop when the context is cancelled", t, func() {
		m := NewMPV(DefaultOptions())
		m.socketPath = filepath.Join(t.TempDir(), "missing.sock")
		m.running.Store(true)

		ctx, cancel := context.WithCancel(testContext(t))
		cancel()

		_, err := m.sendCommandContext(ctx, []any{"seek", 1.0, "absolute+exact"})
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

// testContext stands in for testing.T.Context on toolchains before Go 1.24.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
