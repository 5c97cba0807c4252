package lottie

import (
	"sync"
	"time"
)

// PlayState is the playback controller's state.
type PlayState int

// Play state constants.
const (
	// Stopped is the initial state: the cursor sits at the range
	// start and no ticks are scheduled.
	Stopped PlayState = iota

	// Playing advances the cursor on every due tick.
	Playing

	// Paused holds the cursor where it is.
	Paused
)

// String returns a human-readable name for the play state.
func (s PlayState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Scheduler delivers the display-refresh callback that paces
// playback. Schedule starts delivering ticks to fn and returns a
// cancel function; after cancel returns, no further ticks fire.
//
// The default scheduler ticks on a wall-clock ticker at roughly
// display refresh rate. Tests substitute a manual scheduler to drive
// ticks deterministically, and hosts with their own frame callback
// (a windowing system's vsync, for example) can adapt it here.
type Scheduler interface {
	Schedule(fn func(now time.Time)) (cancel func())
}

// displayInterval approximates a 60 Hz display refresh. Frame pacing
// is done against the document frame rate inside the player, so the
// scheduler only needs to tick at least that often.
const displayInterval = time.Second / 60

// NewTickerScheduler returns a Scheduler backed by a time.Ticker at
// the given interval.
func NewTickerScheduler(interval time.Duration) Scheduler {
	return &tickerScheduler{interval: interval}
}

type tickerScheduler struct {
	interval time.Duration
}

func (s *tickerScheduler) Schedule(fn func(now time.Time)) func() {
	t := time.NewTicker(s.interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case now := <-t.C:
				fn(now)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

// Speed multiplier bounds.
const (
	minSpeed = 0.1
	maxSpeed = 5.0
)

// Player owns the timing loop over a renderer: it translates
// play/pause/seek/segment/speed/direction intent into a current-frame
// cursor, drives the renderer on each due tick, and emits lifecycle
// events.
//
// All methods are safe for concurrent use. Internally the tick
// callback is the only writer that runs off the caller's goroutine; a
// mutex serializes it against direct method calls. Listeners are
// invoked without the lock held, so they may call back into the
// player.
type Player struct {
	mu sync.Mutex

	doc       *Document
	renderer  Renderer
	scheduler Scheduler

	state     PlayState
	frame     float64
	segStart  float64 // active range [segStart, segEnd)
	segEnd    float64
	loop      bool
	speed     float64
	direction int
	subframe  bool
	frameRate float64

	lastAdvance time.Time
	cancelTick  func()
	generation  int
	destroyed   bool

	events listenerRegistry
}

// PlayerOption configures a Player during creation.
type PlayerOption func(*Player)

// WithLoop makes playback wrap at the range boundary instead of
// completing.
func WithLoop(loop bool) PlayerOption {
	return func(p *Player) { p.loop = loop }
}

// WithAutoplay starts playback immediately on construction.
func WithAutoplay() PlayerOption {
	return func(p *Player) { p.state = Playing }
}

// WithSpeed sets the initial speed multiplier, clamped to [0.1, 5].
func WithSpeed(speed float64) PlayerOption {
	return func(p *Player) { p.speed = clamp(speed, minSpeed, maxSpeed) }
}

// WithDirection sets the initial playback direction: negative values
// play in reverse, anything else forward.
func WithDirection(direction int) PlayerOption {
	return func(p *Player) { p.direction = normalizeDirection(direction) }
}

// WithSubframe enables sub-frame stepping: the cursor advances by
// direction times speed, so fractional frame positions become visible
// to evaluation.
func WithSubframe(enabled bool) PlayerOption {
	return func(p *Player) { p.subframe = enabled }
}

// WithScheduler substitutes the tick source. Tests use a manual
// scheduler; hosts with a native frame callback adapt it here.
func WithScheduler(s Scheduler) PlayerOption {
	return func(p *Player) { p.scheduler = s }
}

// WithCapabilities injects a device profile that may cap the
// effective frame rate below the document's.
func WithCapabilities(c Capabilities) PlayerOption {
	return func(p *Player) {
		if c != nil {
			p.frameRate = c.RecommendedFrameRate(p.doc.FrameRate)
		}
	}
}

// NewPlayer creates a player over a parsed document and a renderer
// built for that document. The player owns the renderer for its
// lifetime: Destroy destroys it.
func NewPlayer(doc *Document, renderer Renderer, opts ...PlayerOption) *Player {
	p := &Player{
		doc:       doc,
		renderer:  renderer,
		scheduler: NewTickerScheduler(displayInterval),
		frame:     doc.InPoint,
		segStart:  doc.InPoint,
		segEnd:    doc.OutPoint,
		speed:     1,
		direction: 1,
		frameRate: doc.FrameRate,
	}
	for _, opt := range opts {
		opt(p)
	}
	autoplay := p.state == Playing
	p.state = Stopped
	p.renderCurrent()

	if autoplay {
		p.Play()
	}
	return p
}

// Play starts or resumes playback. A no-op while already playing.
func (p *Player) Play() {
	p.mu.Lock()
	if p.destroyed || p.state == Playing {
		p.mu.Unlock()
		return
	}
	p.state = Playing
	p.lastAdvance = time.Now()
	p.generation++
	gen := p.generation
	p.cancelTick = p.scheduler.Schedule(func(now time.Time) {
		p.tick(gen, now)
	})
	p.mu.Unlock()
}

// Pause suspends playback, keeping the cursor in place. A no-op
// unless playing, so calling it twice has the same effect as once.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.destroyed || p.state != Playing {
		p.mu.Unlock()
		return
	}
	p.state = Paused
	p.stopTickLocked()
	p.mu.Unlock()
}

// Stop halts playback and resets the cursor to the active range
// start, repainting that frame.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.state = Stopped
	p.stopTickLocked()
	p.frame = p.segStart
	evs := p.renderLocked()
	p.mu.Unlock()
	p.dispatch(evs)
}

// Seek moves the cursor to a fraction of the active range, clamped
// to [0, 1], and repaints. The play state does not change.
func (p *Player) Seek(fraction float64) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	fraction = clamp01(fraction)
	p.frame = p.segStart + fraction*(p.segEnd-p.segStart)
	if p.frame > p.lastFrameLocked() {
		p.frame = p.lastFrameLocked()
	}
	evs := p.renderLocked()
	p.mu.Unlock()
	p.dispatch(evs)
}

// GoToAndPlay jumps to a frame, clamped to the document range,
// repaints, and plays.
func (p *Player) GoToAndPlay(frame float64) {
	p.goTo(frame)
	p.Play()
}

// GoToAndStop jumps to a frame, clamped to the document range,
// repaints, and pauses. Pausing is a no-op unless playing, so a
// stopped player stays stopped.
func (p *Player) GoToAndStop(frame float64) {
	p.goTo(frame)
	p.Pause()
}

func (p *Player) goTo(frame float64) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.frame = clamp(frame, p.doc.InPoint, p.doc.OutPoint)
	evs := p.renderLocked()
	p.mu.Unlock()
	p.dispatch(evs)
}

// GoToMarker jumps to a named marker and, when play is true, starts
// playback there. Unknown marker names are ignored with a warning.
func (p *Player) GoToMarker(name string, play bool) {
	m := p.doc.Marker(name)
	if m == nil {
		Logger().Warn("player: unknown marker", "name", name)
		return
	}
	if play {
		p.GoToAndPlay(m.Time)
	} else {
		p.GoToAndStop(m.Time)
	}
}

// PlaySegments restricts playback to a sub-range of the document,
// clamped to the full range. When force is true, or when not
// currently playing, the cursor jumps to the range start. Playback
// starts in either case.
func (p *Player) PlaySegments(from, to float64, force bool) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	if to < from {
		from, to = to, from
	}
	p.segStart = clamp(from, p.doc.InPoint, p.doc.OutPoint)
	p.segEnd = clamp(to, p.doc.InPoint, p.doc.OutPoint)
	if force || p.state != Playing {
		p.frame = p.segStart
	}
	p.mu.Unlock()
	p.Play()
}

// ResetSegments restores the full document range. When force is
// true the cursor jumps back to the in point.
func (p *Player) ResetSegments(force bool) {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.segStart = p.doc.InPoint
	p.segEnd = p.doc.OutPoint
	if force {
		p.frame = p.segStart
	}
	p.mu.Unlock()
}

// SetSpeed sets the speed multiplier, clamped to [0.1, 5].
func (p *Player) SetSpeed(speed float64) {
	p.mu.Lock()
	p.speed = clamp(speed, minSpeed, maxSpeed)
	p.mu.Unlock()
}

// SetDirection sets the playback direction: negative plays reverse.
func (p *Player) SetDirection(direction int) {
	p.mu.Lock()
	p.direction = normalizeDirection(direction)
	p.mu.Unlock()
}

// SetSubframe toggles sub-frame stepping.
func (p *Player) SetSubframe(enabled bool) {
	p.mu.Lock()
	p.subframe = enabled
	p.mu.Unlock()
}

// SetLoop toggles looping.
func (p *Player) SetLoop(loop bool) {
	p.mu.Lock()
	p.loop = loop
	p.mu.Unlock()
}

// State returns the current play state.
func (p *Player) State() PlayState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Frame returns the cursor position in document frames.
func (p *Player) Frame() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Progress returns the cursor position as a fraction of the active
// range.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.segEnd <= p.segStart {
		return 0
	}
	return clamp01((p.frame - p.segStart) / (p.segEnd - p.segStart))
}

// Duration returns the document's playable length.
func (p *Player) Duration() time.Duration { return p.doc.Duration() }

// FrameRate returns the effective frame rate, after any capability
// cap.
func (p *Player) FrameRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameRate
}

// TotalFrames returns the document's playable frame count.
func (p *Player) TotalFrames() float64 { return p.doc.TotalFrames() }

// On registers a listener for an event kind and returns its
// unsubscribe function.
func (p *Player) On(kind EventKind, fn func(Event)) (off func()) {
	p.mu.Lock()
	id := p.events.add(kind, fn)
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.events.remove(kind, id)
		p.mu.Unlock()
	}
}

// Destroy stops playback, destroys the renderer, and emits
// EventDestroy. Safe to call more than once.
func (p *Player) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.state = Stopped
	p.stopTickLocked()
	r := p.renderer
	p.renderer = nil
	ev := p.eventLocked(EventDestroy, nil)
	p.mu.Unlock()

	if r != nil {
		r.Destroy()
	}
	p.dispatch([]Event{ev})
}

// tick is the per-refresh callback. It checks that it belongs to the
// active loop (a cancellation can race a tick that was already
// scheduled), then advances when a frame interval's worth of wall
// time has elapsed.
func (p *Player) tick(gen int, now time.Time) {
	p.mu.Lock()
	if p.destroyed || gen != p.generation || p.state != Playing {
		p.mu.Unlock()
		return
	}
	if now.Sub(p.lastAdvance) < p.frameIntervalLocked() {
		p.mu.Unlock()
		return
	}
	p.lastAdvance = now
	evs := p.advanceLocked()
	p.mu.Unlock()
	p.dispatch(evs)
}

// frameIntervalLocked returns the wall-time interval between frame
// advances: the frame period shrunk (or grown) by the speed
// multiplier.
func (p *Player) frameIntervalLocked() time.Duration {
	rate := p.frameRate * p.speed
	if rate <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / rate)
}

// lastFrameLocked returns the last playable cursor position of the
// active range, one frame before its exclusive end.
func (p *Player) lastFrameLocked() float64 {
	last := p.segEnd - 1
	if last < p.segStart {
		last = p.segStart
	}
	return last
}

// advanceLocked moves the cursor one step and handles the range
// boundary: wrap and EventLoopComplete when looping, clamp, pause and
// a single EventComplete otherwise.
func (p *Player) advanceLocked() []Event {
	step := float64(p.direction)
	if p.subframe {
		step = float64(p.direction) * p.speed
	}
	next := p.frame + step
	last := p.lastFrameLocked()

	var boundary *Event
	switch {
	case p.direction >= 0 && next > last:
		if p.loop {
			p.frame = p.segStart
			ev := p.eventLocked(EventLoopComplete, nil)
			boundary = &ev
		} else {
			p.frame = last
			p.state = Paused
			p.stopTickLocked()
			ev := p.eventLocked(EventComplete, nil)
			boundary = &ev
		}
	case p.direction < 0 && next < p.segStart:
		if p.loop {
			p.frame = last
			ev := p.eventLocked(EventLoopComplete, nil)
			boundary = &ev
		} else {
			p.frame = p.segStart
			p.state = Paused
			p.stopTickLocked()
			ev := p.eventLocked(EventComplete, nil)
			boundary = &ev
		}
	default:
		p.frame = next
	}

	evs := []Event{p.eventLocked(EventEnterFrame, nil)}
	if boundary != nil {
		evs = append(evs, *boundary)
	}
	evs = append(evs, p.renderLocked()...)
	return evs
}

// renderLocked paints the cursor frame. A render failure is logged
// and surfaced as an EventError; it never stops playback.
func (p *Player) renderLocked() []Event {
	if p.renderer == nil {
		return nil
	}
	if err := p.renderer.Render(p.frame); err != nil {
		Logger().Error("player: render failed", "frame", p.frame, "err", err)
		return []Event{p.eventLocked(EventError, err)}
	}
	return nil
}

// renderCurrent paints the cursor frame outside any event flow, used
// at construction.
func (p *Player) renderCurrent() {
	p.mu.Lock()
	evs := p.renderLocked()
	p.mu.Unlock()
	p.dispatch(evs)
}

func (p *Player) eventLocked(kind EventKind, err error) Event {
	return Event{
		Kind:        kind,
		CurrentTime: p.frame - p.segStart,
		TotalTime:   p.segEnd - p.segStart,
		Direction:   p.direction,
		Err:         err,
	}
}

// stopTickLocked cancels the pending tick schedule synchronously and
// invalidates any tick already in flight.
func (p *Player) stopTickLocked() {
	p.generation++
	if p.cancelTick != nil {
		p.cancelTick()
		p.cancelTick = nil
	}
}

// dispatch invokes listeners outside the lock, in registration order
// per event.
func (p *Player) dispatch(evs []Event) {
	for _, ev := range evs {
		p.mu.Lock()
		fns := p.events.snapshot(ev.Kind)
		p.mu.Unlock()
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func normalizeDirection(d int) int {
	if d < 0 {
		return -1
	}
	return 1
}
