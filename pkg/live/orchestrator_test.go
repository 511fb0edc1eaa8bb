package live

import (
	"context"
	"testing"
	"time"

	"temple-sessions-be/pkg/content"

	"github.com/stretchr/testify/assert"
)

func orchestratorOpts(store *Store, exercise *content.Exercise, isHost bool) OrchestratorOptions {
	return OrchestratorOptions{
		SessionID:       "s1",
		UserID:          "host",
		IsHost:          isHost,
		Exercise:        exercise,
		Store:           store,
		Initial:         Session{ID: "s1", ExerciseID: exercise.ID, FacilitatorID: "host"},
		Logger:   nopLogger{},
		Timings: Timings{
			SettleDelay:     5 * time.Millisecond,
			FadeDuration:    100 * time.Millisecond,
			FadeOutDuration: 50 * time.Millisecond,
		},
	}
}

func TestTimingsDefaults(t *testing.T) {
	t.Run("Zero value filled completely", func(t *testing.T) {
		assert.Equal(t, DefaultTimings, Timings{}.withDefaults())
	})

	t.Run("Set fields kept", func(t *testing.T) {
		custom := Timings{SettleDelay: time.Second}.withDefaults()
		assert.Equal(t, time.Second, custom.SettleDelay)
		assert.Equal(t, DefaultTimings.FadeDuration, custom.FadeDuration)
		assert.Equal(t, DefaultTimings.FadeOutDuration, custom.FadeOutDuration)
	})
}

func TestOrchestratorStartSessionHostOnly(t *testing.T) {
	store := NewStore(newFakeChannel(), nopLogger{})
	opts := orchestratorOpts(store, portalExercise(), false)

	o, err := NewOrchestrator(context.Background(), opts)
	assert.NoError(t, err)
	defer o.Leave()

	assert.ErrorIs(t, o.StartSession(context.Background()), ErrNotFacilitator)
}

func TestOrchestratorStartSessionIdempotent(t *testing.T) {
	store := NewStore(newFakeChannel(), nopLogger{})
	opts := orchestratorOpts(store, portalExercise(), true)

	o, err := NewOrchestrator(context.Background(), opts)
	assert.NoError(t, err)
	defer o.Leave()

	assert.NoError(t, o.StartSession(context.Background()))
	assert.Eventually(t, func() bool {
		return o.Snapshot().Started
	}, time.Second, time.Millisecond)

	// A second press is a silent no-op.
	assert.NoError(t, o.StartSession(context.Background()))
}

func TestOrchestratorNoPortalVideoNavigatesOnStart(t *testing.T) {
	store := NewStore(newFakeChannel(), nopLogger{})
	exercise := &content.Exercise{ID: "audio-only", Name: "Audio Only"}
	opts := orchestratorOpts(store, exercise, true)

	navigated := make(chan struct{}, 1)
	haptics := 0
	opts.Callbacks = ScreenCallbacks{
		NavigateToSession: func() { navigated <- struct{}{} },
		TriggerHaptic:     func() { haptics++ },
	}

	o, err := NewOrchestrator(context.Background(), opts)
	assert.NoError(t, err)
	defer o.Leave()

	assert.NoError(t, o.StartSession(context.Background()))

	select {
	case <-navigated:
	case <-time.After(time.Second):
		t.Fatal("expected immediate navigation when the exercise has no portal video")
	}
	assert.Equal(t, 0, haptics)
}

func TestOrchestratorPortalFlow(t *testing.T) {
	store := NewStore(newFakeChannel(), nopLogger{})
	opts := orchestratorOpts(store, portalExercise(), true)

	navigated := make(chan struct{}, 1)
	haptic := make(chan struct{}, 1)
	opts.Callbacks = ScreenCallbacks{
		NavigateToSession: func() { navigated <- struct{}{} },
		TriggerHaptic:     func() { haptic <- struct{}{} },
	}

	o, err := NewOrchestrator(context.Background(), opts)
	assert.NoError(t, err)
	defer o.Leave()

	c := o.Controller()
	c.LoopVideoReady()
	assert.Eventually(t, c.ReadyForDisplay, time.Second, time.Millisecond)
	assert.Eventually(t, o.Fader().Playing, time.Second, time.Millisecond)

	assert.NoError(t, o.StartSession(context.Background()))
	assert.Eventually(t, func() bool {
		return !c.LoopRepeats()
	}, time.Second, time.Millisecond)

	c.LoopVideoEnded()
	select {
	case <-haptic:
	case <-time.After(time.Second):
		t.Fatal("expected a haptic pulse on the loop to end video handover")
	}

	c.EndVideoEnded()
	select {
	case <-navigated:
	case <-time.After(time.Second):
		t.Fatal("expected navigation after the end video finished")
	}
}

func TestOrchestratorSkipPortal(t *testing.T) {
	store := NewStore(newFakeChannel(), nopLogger{})
	opts := orchestratorOpts(store, portalExercise(), true)
	opts.DevMode = true

	navigated := make(chan struct{}, 2)
	opts.Callbacks = ScreenCallbacks{
		NavigateToSession: func() { navigated <- struct{}{} },
	}

	o, err := NewOrchestrator(context.Background(), opts)
	assert.NoError(t, err)
	defer o.Leave()

	// The shortcut is gated on start.
	o.SkipPortal()
	select {
	case <-navigated:
		t.Fatal("skip must not navigate before the session starts")
	case <-time.After(20 * time.Millisecond):
	}

	assert.NoError(t, o.StartSession(context.Background()))
	assert.Eventually(t, func() bool {
		return o.Snapshot().Started
	}, time.Second, time.Millisecond)

	o.SkipPortal()
	select {
	case <-navigated:
	case <-time.After(time.Second):
		t.Fatal("expected skip to navigate once started")
	}
}

func TestOrchestratorRequestLeave(t *testing.T) {
	store := NewStore(newFakeChannel(), nopLogger{})
	opts := orchestratorOpts(store, portalExercise(), false)

	confirm := false
	tornDown := 0
	opts.Callbacks = ScreenCallbacks{
		ConfirmLeave: func() bool { return confirm },
		TeardownCall: func() { tornDown++ },
	}

	o, err := NewOrchestrator(context.Background(), opts)
	assert.NoError(t, err)

	assert.False(t, o.RequestLeave(), "declined dialog keeps the screen alive")
	assert.Equal(t, 0, tornDown)

	confirm = true
	assert.True(t, o.RequestLeave())
	assert.Equal(t, 1, tornDown)

	select {
	case <-o.Done():
	case <-time.After(time.Second):
		t.Fatal("expected Done to close after leave")
	}

	// Leave is idempotent.
	o.Leave()
	assert.Equal(t, 1, tornDown)
}
