// Package playback reconciles decode engine events, background manifest and probe
// results and user commands into one observable State.
//
// A Controller owns its state on a single goroutine. Public methods run on that
// goroutine and wait for completion; engine events and background results are posted
// to it tagged with the stream epoch, and results from a superseded stream are dropped.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/panorama-cli/panorama/log"
	"github.com/panorama-cli/panorama/manifest"
	"github.com/panorama-cli/panorama/player"
	"github.com/panorama-cli/panorama/probe"
	"github.com/panorama-cli/panorama/projection"
	"github.com/panorama-cli/panorama/stream"
	"github.com/samber/mo"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("playback controller is closed")
	// ErrNoLadder means the stream has no manifest to pick variants from.
	ErrNoLadder = errors.New("stream has no resolution ladder")
	// ErrResolutionIndex means the index is neither Automatic nor inside the ladder.
	ErrResolutionIndex = errors.New("resolution index out of range")
)

// opsBuffer lets engine goroutines post events while a command is running.
const opsBuffer = 64

type fovSource int

const (
	fovFallback fovSource = iota
	fovMetadata
	fovForced
)

// Controller is the playback state machine.
type Controller struct {
	engine player.Engine
	opts   Options
	log    log.Entry

	ops       chan func()
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	updates   chan State

	// everything below is owned by the loop goroutine

	state State
	// epoch identifies the open stream; bumped by OpenStream and Stop
	epoch uint64
	// subscription identifies the current engine subscription within a stream
	subscription uint64
	unsubscribe  func()

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	reader *manifest.Reader

	fov              fovSource
	projectionGiven  bool
	aspectFromLadder bool
	lastStatus       player.TimeControlStatus
	scrubSeq         uint64
	timer            Timer
	timerGen         uint64
	presented        mo.Option[geometryKey]

	// seekTarget holds the last relative seek until a tick arrives after it lands
	seekTarget    mo.Option[float64]
	seeksInFlight int
}

// New starts a controller driving engine.
func New(engine player.Engine, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}

	c := &Controller{
		engine:     engine,
		opts:       opts,
		log:        log.WithField("component", "playback"),
		ops:        make(chan func(), opsBuffer),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		updates:    make(chan State, 1),
		state:      defaultState(),
		lastStatus: player.Playing,
	}
	c.resetGroup()

	go c.loop()
	return c
}

func (c *Controller) loop() {
	defer close(c.done)

	for {
		select {
		case op := <-c.ops:
			op()
			c.present()
			c.publish()
		case <-c.quit:
			c.stop()
			c.publish()
			close(c.updates)
			return
		}
	}
}

// exec runs fn on the loop and waits for it.
func (c *Controller) exec(fn func()) error {
	finished := make(chan struct{})
	op := func() {
		fn()
		close(finished)
	}

	select {
	case c.ops <- op:
	case <-c.quit:
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-c.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// post queues fn for the loop if the stream epoch is still current when it runs.
func (c *Controller) post(ctx context.Context, epoch uint64, fn func()) {
	op := func() {
		if epoch != c.epoch {
			c.log.Debugf("dropping result for stale epoch %d (current %d)", epoch, c.epoch)
			return
		}
		fn()
	}

	select {
	case c.ops <- op:
	case <-ctx.Done():
	case <-c.quit:
	}
}

// publish replaces any unread update with the current state.
func (c *Controller) publish() {
	select {
	case <-c.updates:
	default:
	}
	c.updates <- c.state
}

func (c *Controller) resetGroup() {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.group = new(errgroup.Group)
}

// Updates delivers state snapshots. Only the latest unread snapshot is kept.
// The channel is closed by Close.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	var s State
	if err := c.exec(func() { s = c.state }); err != nil {
		<-c.done
		return c.state
	}
	return s
}

// Close stops playback and the controller goroutine. It does not close the engine.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
	<-c.done
	return nil
}

// OpenStream stops the current stream and starts decoding d. Metadata, when present,
// supplies the projection, camera distance and possibly the field of view.
func (c *Controller) OpenStream(ctx context.Context, d stream.Descriptor, metadata mo.Option[stream.Metadata]) error {
	var openErr error
	err := c.exec(func() {
		openErr = c.open(ctx, d, metadata)
	})
	if err != nil {
		return err
	}
	return openErr
}

func (c *Controller) open(ctx context.Context, d stream.Descriptor, metadata mo.Option[stream.Metadata]) error {
	c.stop()

	c.epoch++
	epoch := c.epoch
	logger := log.WithFields(log.Fields{"component": "playback", "epoch": epoch, "url": d.URL})

	md := metadata.OrElse(stream.Metadata{})
	if md.CameraDistance <= 0 {
		md.CameraDistance = c.opts.CameraDistance
	}
	md = md.WithDefaults()

	c.state.Title = d.Title
	c.state.Details = d.Details
	c.state.Projection = md.Projection
	c.state.CameraDistance = md.CameraDistance
	c.projectionGiven = metadata.IsPresent()

	var horizontal float64
	switch {
	case d.ForcedFieldOfView.IsPresent():
		horizontal, c.fov = d.ForcedFieldOfView.MustGet(), fovForced
	case md.FieldOfView.IsPresent():
		horizontal, c.fov = md.FieldOfView.MustGet(), fovMetadata
	default:
		horizontal, c.fov = d.FallbackFieldOfView, fovFallback
	}
	c.state.HorizontalFOV = projection.ClampHorizontalFOV(horizontal)

	if err := c.engine.Open(ctx, d.URL); err != nil {
		logger.Errorf("open failed: %v", err)
		c.stop()
		return fmt.Errorf("open %s: %w", d.URL, err)
	}
	c.state.SourceURL = d.URL
	c.subscribe()

	if c.opts.Prober != nil {
		c.startProbe(epoch, d.URL, c.fov == fovFallback)
	}

	if d.IsRemote() && c.opts.Fetcher != nil {
		c.startManifest(epoch, d.URL)
	}

	logger.Infof("opened %q with %.0f° %s projection", d.Title, c.state.HorizontalFOV, c.state.Projection)
	c.restartAutoHide()
	return nil
}

// subscribe routes engine events to the loop. Events from an older subscription are dropped.
func (c *Controller) subscribe() {
	c.subscription++
	epoch, subscription, ctx := c.epoch, c.subscription, c.ctx

	c.unsubscribe = c.engine.Subscribe(func(e player.Event) {
		c.post(ctx, epoch, func() {
			if subscription != c.subscription {
				return
			}
			c.handle(e)
		})
	})
}

func (c *Controller) unsubscribeEngine() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.subscription++
}

func (c *Controller) startProbe(epoch uint64, url string, wantFOV bool) {
	ctx := c.ctx
	c.group.Go(func() error {
		info, err := c.opts.Prober.Probe(ctx, url)
		c.post(ctx, epoch, func() {
			c.applyProbe(info, err, wantFOV)
		})
		return nil
	})
}

func (c *Controller) applyProbe(info probe.Info, err error, wantFOV bool) {
	if err != nil {
		c.log.Warnf("probe failed, assuming %.2f aspect: %v", fallbackAspectRatio, err)
		if !c.aspectFromLadder {
			c.state.AspectRatio = fallbackAspectRatio
		}
		return
	}

	if !c.aspectFromLadder {
		aspect := info.AspectRatio()
		if aspect <= 0 {
			aspect = fallbackAspectRatio
		}
		c.state.AspectRatio = aspect
		c.state.Width, c.state.Height = info.Width, info.Height
	}

	if wantFOV {
		if horizontal, ok := info.HorizontalFOV.Get(); ok {
			c.state.HorizontalFOV = projection.ClampHorizontalFOV(horizontal)
		}
	}

	if kind, ok := info.Projection.Get(); ok && !c.projectionGiven {
		c.state.Projection = kind
	}
}

func (c *Controller) startManifest(epoch uint64, url string) {
	reader := manifest.NewReader(url, c.opts.Fetcher)
	c.reader = reader
	c.state.HasManifest = true
	c.state.Manifest = manifest.Fetching

	ctx, timeout := c.ctx, c.opts.ManifestTimeout
	c.group.Go(func() error {
		readCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			readCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		ladder, err := reader.Read(readCtx)
		c.post(ctx, epoch, func() {
			c.applyLadder(reader, ladder, err)
		})
		return nil
	})
}

func (c *Controller) applyLadder(reader *manifest.Reader, ladder stream.Ladder, err error) {
	if reader != c.reader {
		return
	}

	if err != nil {
		c.log.Warnf("no resolution ladder for %s: %v", reader.URL(), err)
		c.state.Manifest = manifest.Failed
		c.state.ManifestError = err.Error()
		return
	}

	c.state.Manifest = manifest.Success
	c.state.Ladder = ladder

	top := ladder[0]
	if aspect := top.AspectRatio(); aspect > 0 {
		c.state.AspectRatio = aspect
		c.state.Width, c.state.Height = top.Width, top.Height
		c.aspectFromLadder = true
	}

	c.log.Infof("resolution ladder with %d options, top %s", len(ladder), top)
}

// Stop releases the current stream and resets the state. It is idempotent.
func (c *Controller) Stop() error {
	return c.exec(c.stop)
}

func (c *Controller) stop() {
	c.cancelAutoHide()
	c.unsubscribeEngine()

	c.cancel()
	_ = c.group.Wait()
	c.resetGroup()

	if c.state.IsLoaded() {
		if err := c.engine.Unload(); err != nil {
			c.log.Warnf("unload: %v", err)
		}
	}

	c.epoch++
	c.reader = nil
	c.fov = fovFallback
	c.projectionGiven = false
	c.aspectFromLadder = false
	c.lastStatus = player.Playing
	c.seekTarget = mo.None[float64]()
	c.seeksInFlight = 0
	c.presented = mo.None[geometryKey]()
	c.state = defaultState()
}

// Play resumes playback, restarting from the beginning if the end was reached.
func (c *Controller) Play() error {
	var playErr error
	if err := c.exec(func() { playErr = c.play() }); err != nil {
		return err
	}
	return playErr
}

func (c *Controller) play() error {
	if c.state.HasReachedEnd {
		if err := c.engine.Seek(c.ctx, 0); err != nil {
			c.log.Warnf("seek to start: %v", err)
		}
		c.state.CurrentTime = 0
	}

	if err := c.engine.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	c.state.Paused = false
	c.state.HasReachedEnd = false
	c.restartAutoHide()
	return nil
}

// Pause suspends playback. The auto-hide timer is restarted but a paused
// video never hides the panel.
func (c *Controller) Pause() error {
	var pauseErr error
	if err := c.exec(func() { pauseErr = c.pause() }); err != nil {
		return err
	}
	return pauseErr
}

func (c *Controller) pause() error {
	if err := c.engine.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}

	c.state.Paused = true
	c.restartAutoHide()
	return nil
}

// TogglePlayback plays when paused or ended, pauses otherwise.
func (c *Controller) TogglePlayback() error {
	var toggleErr error
	err := c.exec(func() {
		if c.state.Paused || c.state.HasReachedEnd {
			toggleErr = c.play()
		} else {
			toggleErr = c.pause()
		}
	})
	if err != nil {
		return err
	}
	return toggleErr
}

// SeekRelative jumps by delta seconds from the current time, or from the target of a
// relative seek the engine has not caught up with yet. Out of range targets are clamped.
func (c *Controller) SeekRelative(delta float64) error {
	return c.exec(func() {
		target := c.clampTime(c.seekTarget.OrElse(c.state.CurrentTime) + delta)
		c.state.CurrentTime = target
		c.state.HasReachedEnd = false
		c.seekTarget = mo.Some(target)
		c.seeksInFlight++
		c.seek(target, func(error) { c.seeksInFlight-- })
		c.restartAutoHide()
	})
}

// SkipForward jumps ahead by the skip interval.
func (c *Controller) SkipForward() error {
	return c.SeekRelative(c.opts.SkipInterval)
}

// SkipBackward jumps back by the skip interval.
func (c *Controller) SkipBackward() error {
	return c.SeekRelative(-c.opts.SkipInterval)
}

func (c *Controller) clampTime(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if c.state.Duration > 0 && t > c.state.Duration {
		return c.state.Duration
	}
	return t
}

// seek runs an engine seek in the background and hands its outcome to done on the loop.
func (c *Controller) seek(target float64, done func(error)) {
	epoch, ctx := c.epoch, c.ctx
	c.group.Go(func() error {
		err := c.engine.Seek(ctx, target)
		if err != nil {
			log.WithFields(log.Fields{"component": "playback", "epoch": epoch}).Warnf("seek to %.2f failed: %v", target, err)
		}
		c.post(ctx, epoch, func() { done(err) })
		return nil
	})
}

// SetScrubState drives the scrub machine. ScrubEnded seeks to CurrentTime and
// returns to NotScrubbing once the seek finishes, even if it failed.
func (c *Controller) SetScrubState(s ScrubState) error {
	return c.exec(func() { c.setScrub(s) })
}

func (c *Controller) setScrub(s ScrubState) {
	c.state.Scrub = s
	c.scrubSeq++

	switch s {
	case ScrubStarted:
		c.cancelAutoHide()
	case ScrubEnded:
		seq := c.scrubSeq
		c.state.CurrentTime = c.clampTime(c.state.CurrentTime)
		c.state.HasReachedEnd = false
		c.seek(c.state.CurrentTime, func(error) {
			if seq != c.scrubSeq || c.state.Scrub != ScrubEnded {
				return
			}
			c.state.Scrub = NotScrubbing
			c.restartAutoHide()
		})
	}
}

// SetCurrentTime sets the pending position while scrubbing.
func (c *Controller) SetCurrentTime(t float64) error {
	return c.exec(func() {
		c.state.CurrentTime = c.clampTime(t)
	})
}

// ResumeAt seeks to t as if the user had scrubbed there.
func (c *Controller) ResumeAt(t float64) error {
	return c.exec(func() {
		c.state.CurrentTime = c.clampTime(t)
		c.setScrub(ScrubEnded)
	})
}

// SelectResolutionOption switches to ladder[index], or to the adaptive root playlist
// for Automatic, keeping the playback position and the paused state.
func (c *Controller) SelectResolutionOption(index int) error {
	var selectErr error
	if err := c.exec(func() { selectErr = c.selectResolution(index) }); err != nil {
		return err
	}
	return selectErr
}

func (c *Controller) selectResolution(index int) error {
	if c.reader == nil {
		return ErrNoLadder
	}
	if index < Automatic || index >= len(c.state.Ladder) {
		return fmt.Errorf("%w: %d not in [-1, %d)", ErrResolutionIndex, index, len(c.state.Ladder))
	}

	url := c.reader.URL()
	if index != Automatic {
		url = c.state.Ladder[index].URL
	}

	if url == c.state.SourceURL {
		return nil
	}

	c.state.ResolutionPanelVisible = false
	c.restartAutoHide()

	c.unsubscribeEngine()
	if err := c.engine.ReplaceSource(c.ctx, url); err != nil {
		c.subscribe()
		return fmt.Errorf("switch to %s: %w", url, err)
	}

	c.state.SourceURL = url
	c.state.Selected = index

	// the new source starts at zero; replaying a scrub end seeks back to where we were
	c.setScrub(ScrubEnded)
	c.subscribe()

	if !c.state.Paused {
		if err := c.engine.Play(); err != nil {
			c.log.Warnf("resume after switch: %v", err)
		}
	}

	c.log.Infof("switched to %s", url)
	return nil
}
