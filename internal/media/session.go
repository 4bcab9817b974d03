// Package media is the boundary to the external real-time media
// platform. The rest of the client treats it as an opaque event
// source plus command sink: events arrive on a single channel in
// transport delivery order, commands are issued through the Session
// interface. Nothing above this package sees SDP, ICE or RTP.
package media

import (
	"context"

	"github.com/okri/mosaic/internal/domain"
)

type EventKind string

const (
	EventConnected               EventKind = "connected"
	EventDisconnected            EventKind = "disconnected"
	EventParticipantConnected    EventKind = "participant_connected"
	EventParticipantDisconnected EventKind = "participant_disconnected"
	EventTrackSubscribed         EventKind = "track_subscribed"
	EventTrackUnsubscribed       EventKind = "track_unsubscribed"
	EventTrackMuted              EventKind = "track_muted"
	EventTrackUnmuted            EventKind = "track_unmuted"
)

// Event is one session occurrence as delivered by the transport.
// Ordering is guaranteed per participant, not globally.
type Event struct {
	Kind        EventKind
	Participant domain.ParticipantID
	Name        string           // display name; set on participant/track arrivals
	Track       domain.TrackKind // track_* events only
}

// LocalTrack is an opaque handle to a captured local media track.
// Acquisition may fail independently of session connect; the handle
// only exists once capture succeeded.
type LocalTrack interface {
	ID() string
	Kind() domain.TrackKind
}

// Session is the live connection to one conference room.
// Connect and PublishTrack suspend awaiting transport acknowledgement
// and must not be called from the event-consuming goroutine.
type Session interface {
	Connect(ctx context.Context, url, token string) error
	Disconnect()
	PublishTrack(ctx context.Context, track LocalTrack) error
	SetCameraEnabled(ctx context.Context, enabled bool) error
	SetMicrophoneEnabled(ctx context.Context, enabled bool) error
	Events() <-chan Event
}
