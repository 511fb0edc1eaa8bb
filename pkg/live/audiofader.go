package live

import (
	"sync"
	"time"
)

// Fader ramps the volume of a looping ambient track toward a target over a
// duration. Only one fade is in flight at a time: a new target supersedes the
// previous ramp, starting from whatever volume the track has reached. Pausing
// freezes playback and volume immediately; resuming restarts the ramp from
// the frozen volume toward the configured target.
type Fader struct {
	mu sync.Mutex

	clock func() time.Time

	playing  bool
	from     float64
	target   float64
	started  time.Time
	duration time.Duration
}

func NewFader() *Fader {
	return &Fader{clock: time.Now}
}

// NewFaderWithClock is used by tests to control elapsed time.
func NewFaderWithClock(clock func() time.Time) *Fader {
	return &Fader{clock: clock}
}

// SetTarget supersedes any in-flight fade with a new one.
func (f *Fader) SetTarget(volume float64, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.from = f.volumeLocked(f.clock())
	f.target = volume
	f.duration = duration
	f.started = f.clock()
}

// Play resumes playback, restarting the ramp from the current volume.
func (f *Fader) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing {
		return
	}
	f.playing = true
	f.started = f.clock()
}

// Pause stops playback immediately regardless of any in-flight fade.
func (f *Fader) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.playing {
		return
	}
	f.from = f.volumeLocked(f.clock())
	f.playing = false
}

// Playing reports whether the track is audible at all.
func (f *Fader) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

// Volume returns the current audible volume.
func (f *Fader) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volumeLocked(f.clock())
}

func (f *Fader) volumeLocked(now time.Time) float64 {
	if !f.playing {
		return f.from
	}
	if f.duration <= 0 {
		return f.target
	}
	elapsed := now.Sub(f.started)
	if elapsed >= f.duration {
		return f.target
	}
	progress := float64(elapsed) / float64(f.duration)
	return f.from + (f.target-f.from)*progress
}
