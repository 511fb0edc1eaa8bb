package live

import "time"

// UserData is the ephemeral per-connection blob a participant announces when
// joining the call. A nil UserData means the client never reported one.
type UserData struct {
	InPortal bool `json:"in_portal"`
}

// Participant is one connected device in a session. Participants exist only
// for the lifetime of the realtime connection and are owned by the shared
// session state; consumers must never mutate them.
type Participant struct {
	UserID   string    `json:"user_id"`
	UserData *UserData `json:"user_data,omitempty"`
}

// Session is the server-synchronized state of one temple. Snapshots of it
// flow from the realtime channel through the Store to every subscriber.
type Session struct {
	ID              string        `json:"id"`
	ExerciseID      string        `json:"exercise_id"`
	FacilitatorID   string        `json:"facilitator_id"`
	Started         bool          `json:"started"`
	StartTime       time.Time     `json:"start_time"`
	SpotlightUserID string        `json:"spotlight_user_id,omitempty"`
	Participants    []Participant `json:"participants,omitempty"`
}

// IsFacilitator reports whether the given user holds host privileges.
func (s *Session) IsFacilitator(userID string) bool {
	return s.FacilitatorID != "" && s.FacilitatorID == userID
}

// SessionUpdate is a partial write against a session. Nil fields are left
// untouched when the update is applied. The `started` flag is monotonic:
// applying `false` after the session has started is ignored.
type SessionUpdate struct {
	Started         *bool          `json:"started,omitempty"`
	StartTime       *time.Time     `json:"start_time,omitempty"`
	SpotlightUserID *string        `json:"spotlight_user_id,omitempty"`
	Participants    *[]Participant `json:"participants,omitempty"`
}

// Apply merges the update into a copy of the session and returns it.
func (u SessionUpdate) Apply(s Session) Session {
	if u.Started != nil && *u.Started {
		s.Started = true
	}
	if u.StartTime != nil {
		s.StartTime = *u.StartTime
	}
	if u.SpotlightUserID != nil {
		s.SpotlightUserID = *u.SpotlightUserID
	}
	if u.Participants != nil {
		s.Participants = append([]Participant(nil), (*u.Participants)...)
	}
	return s
}
