package live

// VisibleParticipants resolves which participants belong in the live grid.
//
// When the current content slide is a host-type slide and a spotlight user is
// set, that user is rendered as the presenter and removed from the grid.
// Participants still waiting in the intro portal are always removed. A
// participant without user data is kept: unknown portal status means assume
// present. Roster order is preserved.
func VisibleParticipants(roster []Participant, slideIsHostType bool, spotlightUserID string) []Participant {
	visible := make([]Participant, 0, len(roster))
	for _, p := range roster {
		if slideIsHostType && spotlightUserID != "" && p.UserID == spotlightUserID {
			continue
		}
		if p.UserData != nil && p.UserData.InPortal {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}
