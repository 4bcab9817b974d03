package session

import "github.com/okri/mosaic/internal/domain"

// Focus is the exclusive single-tile spotlight. It is orthogonal to
// pagination: a focused tile may live on any page, and focusing never
// moves the current page.
type Focus struct {
	id  domain.ParticipantID
	set bool
}

// ID returns the focused participant, if any.
func (f *Focus) ID() (domain.ParticipantID, bool) {
	return f.id, f.set
}

func (f *Focus) Is(id domain.ParticipantID) bool {
	return f.set && f.id == id
}

// Set spotlights id. Re-focusing the already focused id is a no-op so
// repeated clicks cause no overlay churn; focusing a different id
// implicitly clears the previous focus.
func (f *Focus) Set(id domain.ParticipantID) bool {
	if f.Is(id) {
		return false
	}
	f.id = id
	f.set = true
	return true
}

// Clear is idempotent and safe when nothing is focused.
func (f *Focus) Clear() {
	f.id = ""
	f.set = false
}
