package player

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panorama-cli/panorama/constant"
	"github.com/panorama-cli/panorama/log"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
	// loadTimeout bounds how long a seek waits for a new source to start
	loadTimeout = 30 * time.Second
)

var (
	// ErrNotRunning is returned by commands issued before Open or after Close.
	ErrNotRunning = errors.New("mpv is not running")
	// ErrLoadTimeout is returned by a seek when the current source never finished loading.
	ErrLoadTimeout = errors.New("mpv did not finish loading the source")
)

// MPV implements Engine using mpv's JSON-IPC protocol.
type MPV struct {
	opts Options

	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	listener   *EventListener
	tickerStop chan struct{}
	tickerDone chan struct{}

	mu      sync.Mutex // protects socket writes
	life    sync.Mutex // protects process lifecycle
	running atomic.Bool

	sinksMu  sync.Mutex
	sinks    map[int]func(Event)
	nextSink int

	statusMu sync.Mutex
	paused   bool
	caching  bool
	status   TimeControlStatus

	// loaded is closed once the current source can take seeks
	loadMu sync.Mutex
	loaded chan struct{}
}

// NewMPV creates a new MPV engine. The process is started by the first Open.
func NewMPV(opts Options) *MPV {
	loaded := make(chan struct{})
	close(loaded)

	return &MPV{
		opts:   opts,
		exited: make(chan struct{}),
		sinks:  make(map[int]func(Event)),
		status: Playing,
		loaded: loaded,
	}
}

// Open starts mpv with url, or loads url into the running instance.
func (m *MPV) Open(ctx context.Context, rawURL string) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	m.life.Lock()
	defer m.life.Unlock()

	if m.running.Load() && m.alive() {
		return m.loadFile(target)
	}

	return m.start(ctx, target)
}

// ReplaceSource loads url in place of the current media.
func (m *MPV) ReplaceSource(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	return m.loadFile(target)
}

func (m *MPV) loadFile(target string) error {
	if !m.running.Load() {
		return ErrNotRunning
	}

	// mpv answers loadfile right away but rejects seeks until playback of the new file starts
	m.beginLoad()
	if _, err := m.sendCommand([]any{"loadfile", target, "replace"}); err != nil {
		m.settleLoad()
		return err
	}
	return nil
}

func (m *MPV) beginLoad() {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	m.loaded = make(chan struct{})
}

func (m *MPV) settleLoad() {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()
	select {
	case <-m.loaded:
	default:
		close(m.loaded)
	}
}

// waitLoaded blocks until the current source has loaded, or failed to.
func (m *MPV) waitLoaded(ctx context.Context) error {
	m.loadMu.Lock()
	loaded := m.loaded
	m.loadMu.Unlock()

	timer := time.NewTimer(loadTimeout)
	defer timer.Stop()

	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.exited:
		return ErrNotRunning
	case <-timer.C:
		return ErrLoadTimeout
	}
}

func (m *MPV) start(ctx context.Context, target string) error {
	// leftovers from a process that exited on its own
	m.stopTicker()
	if m.listener != nil {
		m.listener.Stop()
		m.listener = nil
	}
	m.running.Store(false)

	// os.TempDir() for cross-platform support (macOS $TMPDIR is /var/folders/... not /tmp/)
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("%s-%x.sock", constant.Panorama, randomBytes))
	}

	m.beginLoad()
	m.cmd = exec.Command(m.opts.Binary, m.args(target)...)

	// Detach from parent process group to prevent cascading shell panics.
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// reap the process to prevent zombies
	exited := make(chan struct{})
	m.exited = exited
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(ctx); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.handleProperty)
	if err := m.listener.Start(); err != nil {
		_ = killProcess(m.cmd)
		return err
	}

	m.running.Store(true)
	m.startTicker()

	// file-loaded may have been broadcast before the listener connected
	if _, err := m.Position(); err == nil {
		m.settleLoad()
	}

	log.WithFields(log.Fields{"socket": m.socketPath, "pid": m.cmd.Process.Pid}).Infof("mpv started")
	return nil
}

// args builds the mpv command line. Only playback plumbing is passed so the user's mpv.conf still applies.
func (m *MPV) args(target string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		"--force-window=yes",
		"--idle=yes",
		// stay on the last frame so eof-reached is reported and play can restart from 0
		"--keep-open=yes",
		fmt.Sprintf("--user-agent=%s", constant.UserAgent),
	}

	if m.opts.PeakBitrate > 0 {
		args = append(args, fmt.Sprintf("--hls-bitrate=%d", m.opts.PeakBitrate))
	}
	if m.opts.ForwardBuffer > 0 {
		args = append(args, "--cache=yes", fmt.Sprintf("--cache-secs=%d", m.opts.ForwardBuffer))
	}

	return append(args, target)
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return errors.New("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) alive() bool {
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// Play resumes playback.
func (m *MPV) Play() error {
	return m.Set("pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause() error {
	return m.Set("pause", true)
}

// Seek moves playback to the given absolute position in seconds. A source that is
// still loading is waited for first.
func (m *MPV) Seek(ctx context.Context, seconds float64) error {
	if err := m.waitLoaded(ctx); err != nil {
		return fmt.Errorf("seek to %.2f: %w", seconds, err)
	}
	_, err := m.sendCommandContext(ctx, []any{"seek", seconds, "absolute+exact"})
	return err
}

// Position returns the current playback position in seconds.
func (m *MPV) Position() (float64, error) {
	return m.getFloatProperty("time-pos")
}

// Unload stops the current media. mpv stays idle.
func (m *MPV) Unload() error {
	if !m.running.Load() {
		return nil
	}
	_, err := m.sendCommand([]any{"stop"})
	return err
}

// Subscribe registers fn for engine events.
func (m *MPV) Subscribe(fn func(Event)) (cancel func()) {
	m.sinksMu.Lock()
	defer m.sinksMu.Unlock()

	id := m.nextSink
	m.nextSink++
	m.sinks[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.sinksMu.Lock()
			delete(m.sinks, id)
			m.sinksMu.Unlock()
		})
	}
}

// emit dispatches e outside the lock so a sink may unsubscribe from its callback.
func (m *MPV) emit(e Event) {
	m.sinksMu.Lock()
	sinks := make([]func(Event), 0, len(m.sinks))
	for _, sink := range m.sinks {
		sinks = append(sinks, sink)
	}
	m.sinksMu.Unlock()

	for _, sink := range sinks {
		sink(e)
	}
}

// handleProperty translates observed mpv properties into events.
func (m *MPV) handleProperty(name string, data any) {
	switch name {
	case "duration":
		if seconds, ok := data.(float64); ok {
			m.emit(DurationChanged{Seconds: seconds})
		}
	case "pause":
		paused, _ := data.(bool)
		m.updateStatus(func() { m.paused = paused })
	case "paused-for-cache":
		caching, _ := data.(bool)
		m.updateStatus(func() { m.caching = caching })
	case "eof-reached":
		if reached, _ := data.(bool); reached {
			m.emit(EndOfMedia{})
		}
	case "file-loaded":
		m.settleLoad()
	case "end-file":
		// the previous file also ends with reason "stop" when a new one replaces it
		if event, _ := data.(map[string]any); event["reason"] == "error" {
			m.settleLoad()
		}
	}
}

func (m *MPV) updateStatus(mutate func()) {
	m.statusMu.Lock()
	mutate()
	status := timeControlStatus(m.paused, m.caching)
	changed := status != m.status
	m.status = status
	m.statusMu.Unlock()

	if changed {
		m.emit(TimeControlChanged{Status: status})
	}
}

func timeControlStatus(paused, caching bool) TimeControlStatus {
	switch {
	case paused:
		return Paused
	case caching:
		return Waiting
	default:
		return Playing
	}
}

// startTicker polls the clock and throughput at the tick interval.
func (m *MPV) startTicker() {
	if m.tickerStop != nil {
		return
	}

	stop, done, exited := make(chan struct{}), make(chan struct{}), m.exited
	m.tickerStop, m.tickerDone = stop, done

	go func() {
		defer close(done)

		ticker := time.NewTicker(m.opts.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-exited:
				return
			case <-ticker.C:
				pos, err := m.Position()
				if err != nil {
					// nothing loaded
					continue
				}

				bitrate, err := m.getFloatProperty("video-bitrate")
				if err != nil {
					bitrate = 0
				}

				m.emit(TimeTick{Position: pos, Bitrate: bitrate})
			}
		}
	}()
}

func (m *MPV) stopTicker() {
	if m.tickerStop == nil {
		return
	}
	close(m.tickerStop)
	<-m.tickerDone
	m.tickerStop, m.tickerDone = nil, nil
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	m.life.Lock()
	defer m.life.Unlock()

	m.stopTicker()
	if m.listener != nil {
		m.listener.Stop()
		m.listener = nil
	}

	if !m.running.Swap(false) {
		return nil
	}

	// Try graceful quit via IPC
	_, _ = m.sendCommand([]any{"quit"})

	select {
	case <-m.exited:
	case <-time.After(quitTimeout):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Set a property
func (m *MPV) Set(property string, value any) error {
	if !m.running.Load() {
		return ErrNotRunning
	}
	_, err := m.sendCommand([]any{"set_property", property, value})
	return err
}

// getFloatProperty is a helper to retrieve a float64 mpv property via IPC.
func (m *MPV) getFloatProperty(name string) (float64, error) {
	if !m.running.Load() {
		return 0, ErrNotRunning
	}

	data, err := m.sendCommand([]any{"get_property", name})
	if err != nil {
		return 0, err
	}

	if data == nil {
		return 0, fmt.Errorf("property %s: nil response", name)
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}

	return val, nil
}

// sanitizeMediaTarget validates that a URL or path is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", errors.New("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", errors.New("invalid control characters in URL")
	}

	// Prevent flag injection: URLs must not start with -
	if strings.HasPrefix(l, "-") {
		return "", errors.New("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		case "file":
			return filepath.Clean(u.Path), nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	// Treat as local file path
	return filepath.Clean(l), nil
}
