package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"temple-sessions-be/internal/pkg/logger"
	"temple-sessions-be/pkg/content"
	"temple-sessions-be/pkg/events"
)

// ErrNotFacilitator is returned when a non-host tries to start the session.
var ErrNotFacilitator = errors.New("only the facilitator can start the session")

// MetricsSink receives analytics events fire-and-forget.
type MetricsSink interface {
	Publish(ctx context.Context, event events.Event) error
}

// Timings are the portal media timings a screen applies. Zero fields fall
// back to the matching DefaultTimings entry.
type Timings struct {
	// SettleDelay holds the loop video back after load to mask the call
	// backend's join artifact.
	SettleDelay time.Duration

	// FadeDuration ramps the ambient audio in once the portal is visible.
	FadeDuration time.Duration

	// FadeOutDuration ramps the audio out during the transition.
	FadeOutDuration time.Duration
}

// DefaultTimings mirror the constants the mobile clients shipped with.
var DefaultTimings = Timings{
	SettleDelay:     2 * time.Second,
	FadeDuration:    10 * time.Second,
	FadeOutDuration: 5 * time.Second,
}

func (t Timings) withDefaults() Timings {
	if t.SettleDelay == 0 {
		t.SettleDelay = DefaultTimings.SettleDelay
	}
	if t.FadeDuration == 0 {
		t.FadeDuration = DefaultTimings.FadeDuration
	}
	if t.FadeOutDuration == 0 {
		t.FadeOutDuration = DefaultTimings.FadeOutDuration
	}
	return t
}

// ScreenCallbacks are the outward-facing hooks of one session screen.
type ScreenCallbacks struct {
	// NavigateToSession moves the screen from the portal into the live
	// session.
	NavigateToSession func()

	// ConfirmLeave shows the leave-confirmation dialog and reports whether
	// the user confirmed.
	ConfirmLeave func() bool

	// TriggerHaptic fires a heavy haptic pulse.
	TriggerHaptic func()

	// TeardownCall disconnects from the video call backend.
	TeardownCall func()
}

// OrchestratorOptions configures one screen instance.
type OrchestratorOptions struct {
	SessionID string
	UserID    string
	IsHost    bool
	DevMode   bool

	Exercise  *content.Exercise
	Store     *Store
	Initial   Session
	Callbacks ScreenCallbacks
	Metrics   MetricsSink
	Logger    logger.ILogger

	Timings Timings
}

// Orchestrator wires the shared session state, the media transition
// controller and the audio fader into the end-to-end portal → live → leave
// behaviour of a single screen.
type Orchestrator struct {
	opts       OrchestratorOptions
	sub        *Subscription
	controller *Controller
	fader      *Fader

	mu       sync.Mutex
	snapshot Session
	left     bool
	done     chan struct{}
}

func NewOrchestrator(ctx context.Context, opts OrchestratorOptions) (*Orchestrator, error) {
	opts.Timings = opts.Timings.withDefaults()
	o := &Orchestrator{
		opts:  opts,
		fader: NewFader(),
		done:  make(chan struct{}),
	}

	o.controller = NewController(opts.Exercise, opts.Timings.SettleDelay, TransitionEffects{
		ReadyForDisplay: o.onReadyForDisplay,
		TriggerHaptic:   o.onTransition,
		EnterLive:       o.onEnterLive,
	})

	sub, err := opts.Store.Subscribe(ctx, opts.SessionID, opts.Initial)
	if err != nil {
		return nil, err
	}
	o.sub = sub
	o.snapshot = opts.Initial

	go o.watch()
	return o, nil
}

// Controller exposes the media transition controller so the media layer can
// deliver its callbacks.
func (o *Orchestrator) Controller() *Controller {
	return o.controller
}

// Fader exposes the ambient audio fader.
func (o *Orchestrator) Fader() *Fader {
	return o.fader
}

// Snapshot returns the latest session state this screen has observed.
func (o *Orchestrator) Snapshot() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot
}

// VisibleParticipants resolves the grid roster for the current snapshot.
func (o *Orchestrator) VisibleParticipants(slideIsHostType bool) []Participant {
	snap := o.Snapshot()
	return VisibleParticipants(snap.Participants, slideIsHostType, snap.SpotlightUserID)
}

// StartSession is the facilitator-only start action. Pressing it again after
// the session has started is a no-op.
func (o *Orchestrator) StartSession(ctx context.Context) error {
	if !o.opts.IsHost {
		return ErrNotFacilitator
	}
	if o.Snapshot().Started {
		return nil
	}
	if err := o.opts.Store.SetStarted(ctx, o.opts.SessionID); err != nil {
		return err
	}
	o.emitMetric(ctx, events.TypeSessionStarted)
	return nil
}

// SkipPortal is the developer-only shortcut past the portal. It only works
// once the session has started, mirroring the start-gated dev button.
func (o *Orchestrator) SkipPortal() {
	if !o.opts.DevMode || !o.Snapshot().Started {
		return
	}
	o.navigate()
}

// RequestLeave intercepts the back action during a live call. Navigation only
// proceeds when the user confirms; the return value reports the decision.
func (o *Orchestrator) RequestLeave() bool {
	if o.opts.Callbacks.ConfirmLeave != nil && !o.opts.Callbacks.ConfirmLeave() {
		return false
	}
	o.Leave()
	return true
}

// Leave tears the screen down: call disconnect, media timers, audio and the
// session subscription.
func (o *Orchestrator) Leave() {
	o.mu.Lock()
	if o.left {
		o.mu.Unlock()
		return
	}
	o.left = true
	o.mu.Unlock()

	if o.opts.Callbacks.TeardownCall != nil {
		o.opts.Callbacks.TeardownCall()
	}
	o.controller.Close()
	o.fader.Pause()
	o.sub.Close()
	o.emitMetric(context.Background(), events.TypeSessionLeft)
}

// Done closes after Leave has completed teardown.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

func (o *Orchestrator) watch() {
	defer close(o.done)
	for snap := range o.sub.Updates() {
		o.mu.Lock()
		o.snapshot = snap
		o.mu.Unlock()
		if snap.Started {
			o.controller.SetStarted()
		}
	}
}

func (o *Orchestrator) onReadyForDisplay() {
	o.fader.Play()
	o.fader.SetTarget(1, o.opts.Timings.FadeDuration)
}

func (o *Orchestrator) onTransition() {
	o.fader.SetTarget(0, o.opts.Timings.FadeOutDuration)
	if o.opts.Callbacks.TriggerHaptic != nil {
		o.opts.Callbacks.TriggerHaptic()
	}
}

func (o *Orchestrator) onEnterLive() {
	o.navigate()
}

func (o *Orchestrator) navigate() {
	if o.opts.Callbacks.NavigateToSession != nil {
		o.opts.Callbacks.NavigateToSession()
	}
}

func (o *Orchestrator) emitMetric(ctx context.Context, eventType string) {
	if o.opts.Metrics == nil {
		return
	}
	exerciseID := ""
	if o.opts.Exercise != nil {
		exerciseID = o.opts.Exercise.ID
	}
	evt := events.NewSessionMetricEvent(eventType, o.opts.SessionID, exerciseID, o.opts.UserID)
	go func() {
		if err := o.opts.Metrics.Publish(context.Background(), evt); err != nil && o.opts.Logger != nil {
			o.opts.Logger.Warn("Orchestrator", "Failed to publish metric event", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
		}
	}()
}
