package live

import (
	"sync"
	"time"

	"temple-sessions-be/pkg/content"
)

// Phase is the portal media state of a single screen instance.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseTransitioning
	PhaseLive
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseTransitioning:
		return "transitioning"
	case PhaseLive:
		return "live"
	default:
		return "unknown"
	}
}

// TransitionEffects are the side effects fired on state machine edges. Each
// fires at most once per controller instance so screens can assert exactly
// one haptic pulse and one navigation.
type TransitionEffects struct {
	// TriggerHaptic fires when the loop video hands over to the end video.
	TriggerHaptic func()

	// EnterLive fires when the portal experience is over and the screen
	// should navigate into the live session.
	EnterLive func()

	// ReadyForDisplay fires once the loop video may be shown and the
	// ambient audio unmuted.
	ReadyForDisplay func()
}

// Controller drives the waiting → transitioning → live portal lifecycle for
// one screen. Media layer callbacks (load, ready, end) and the shared
// `started` flag are its inputs; haptics and navigation are its outputs.
//
// The loop video repeats while the session has not started. Once started the
// loop is no longer set to repeat, so it reaches its end exactly once and
// triggers the transition. Portals without a loop video bypass the machine
// and enter live directly.
type Controller struct {
	mu sync.Mutex

	exercise    *content.Exercise
	effects     TransitionEffects
	settleDelay time.Duration

	phase       Phase
	started     bool
	ready       bool
	mediaFailed bool
	closed      bool

	hapticFired bool
	enteredLive bool

	settleTimer *time.Timer
}

func NewController(exercise *content.Exercise, settleDelay time.Duration, effects TransitionEffects) *Controller {
	return &Controller{
		exercise:    exercise,
		effects:     effects,
		settleDelay: settleDelay,
		phase:       PhaseWaiting,
	}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// ReadyForDisplay reports whether the loop video and ambient audio may play.
func (c *Controller) ReadyForDisplay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// LoopRepeats reports the repeat flag for the loop video.
func (c *Controller) LoopRepeats() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.started
}

// SetStarted feeds the shared session started flag into the machine. It is
// idempotent; the flag never reverts.
func (c *Controller) SetStarted() {
	c.mu.Lock()
	if c.closed || c.started {
		c.mu.Unlock()
		return
	}
	c.started = true

	// No loop video (or broken media): skip the portal entirely. No
	// transition phase, no haptic.
	if !c.exercise.HasPortalVideo() || c.mediaFailed {
		c.enterLiveLocked()
		return
	}
	c.mu.Unlock()
}

// LoopVideoReady is the media layer load callback for the loop video. The
// ready latch waits out an extra settle delay to mask the call backend's
// join-timing artifact right after joining.
func (c *Controller) LoopVideoReady() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.ready || c.settleTimer != nil {
		return
	}
	c.settleTimer = time.AfterFunc(c.settleDelay, func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.ready = true
		ready := c.effects.ReadyForDisplay
		c.mu.Unlock()
		if ready != nil {
			ready()
		}
	})
}

// LoopVideoEnded is the end-of-playback callback for the loop video. While
// the session has not started the loop is on repeat and this is a no-op.
func (c *Controller) LoopVideoEnded() {
	c.mu.Lock()
	if c.closed || c.phase != PhaseWaiting || !c.started {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseTransitioning
	var haptic func()
	if !c.hapticFired {
		c.hapticFired = true
		haptic = c.effects.TriggerHaptic
	}
	c.mu.Unlock()
	if haptic != nil {
		haptic()
	}
}

// EndVideoEnded is the end-of-playback callback for the end video.
func (c *Controller) EndVideoEnded() {
	c.mu.Lock()
	if c.closed || c.phase != PhaseTransitioning {
		c.mu.Unlock()
		return
	}
	c.enterLiveLocked()
}

// MediaFailed marks the portal media as broken. The machine must never hang
// in waiting: if the session is already started the screen falls through to
// live immediately, otherwise it will on the next SetStarted.
func (c *Controller) MediaFailed() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mediaFailed = true
	if c.started {
		c.enterLiveLocked()
		return
	}
	c.mu.Unlock()
}

// Close cancels the pending settle timer so no effect fires against a
// disposed screen.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.settleTimer != nil {
		c.settleTimer.Stop()
		c.settleTimer = nil
	}
}

// enterLiveLocked transitions to live and fires EnterLive exactly once. The
// lock is released before the callback runs.
func (c *Controller) enterLiveLocked() {
	c.phase = PhaseLive
	var enter func()
	if !c.enteredLive {
		c.enteredLive = true
		enter = c.effects.EnterLive
	}
	c.mu.Unlock()
	if enter != nil {
		enter()
	}
}
