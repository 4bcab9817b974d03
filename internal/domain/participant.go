// Package domain contains entity types without logic, just meta-data.
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxNameLen = 36

var (
	ErrNameEmpty   = errors.New("participant name empty")
	ErrNameTooLong = errors.New("participant name too long")
)

// ParticipantID is an opaque stable identifier assigned by the media
// server. Server-assigned ids are UUIDs, so the Local sentinel never
// collides with a remote id.
type ParticipantID string

// Local identifies the local publisher.
const Local ParticipantID = "local"

// Participant pairs an id with its display name for roster listings.
type Participant struct {
	ID   ParticipantID `json:"id"`
	Name string        `json:"name"`
}

func (id ParticipantID) IsLocal() bool { return id == Local }

func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}

// ValidateName checks a user-supplied participant name before it is
// sent to the token service.
func ValidateName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	return nil
}
