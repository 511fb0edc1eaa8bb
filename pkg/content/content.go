package content

// VideoSource describes one playable asset of an intro portal.
type VideoSource struct {
	Source  string `json:"source"`
	Preview string `json:"preview,omitempty"`
	Audio   string `json:"audio,omitempty"`
}

// Theme carries the display colours of an exercise.
type Theme struct {
	TextColor       string `json:"text_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// Exercise is the read-only content descriptor for a session. The catalog
// itself is maintained elsewhere; this package only exposes lookups.
type Exercise struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	VideoLoop *VideoSource `json:"video_loop,omitempty"`
	VideoEnd  *VideoSource `json:"video_end,omitempty"`
	Theme     *Theme       `json:"theme,omitempty"`
}

// HasPortalVideo reports whether the portal has a loop video at all. Without
// one the portal experience is skipped entirely.
func (e *Exercise) HasPortalVideo() bool {
	return e != nil && e.VideoLoop != nil && e.VideoLoop.Source != ""
}

// Provider resolves exercises by id.
type Provider interface {
	GetExercise(id string) (*Exercise, bool)
}

// StaticProvider is a fixed in-memory catalog, used by the server bootstrap
// and by tests.
type StaticProvider struct {
	exercises map[string]*Exercise
}

func NewStaticProvider(exercises []*Exercise) *StaticProvider {
	byID := make(map[string]*Exercise, len(exercises))
	for _, e := range exercises {
		byID[e.ID] = e
	}
	return &StaticProvider{exercises: byID}
}

func (p *StaticProvider) GetExercise(id string) (*Exercise, bool) {
	e, ok := p.exercises[id]
	return e, ok
}
