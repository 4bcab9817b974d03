package session

import (
	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/domain"
	"github.com/okri/mosaic/internal/media"
)

// Reconciler maps each inbound session event to registry, pagination
// and focus mutations. Handlers are total over their inputs: events
// referencing an id that is no longer registered are absorbed as
// no-ops, never surfaced. Applying the same removal twice equals
// applying it once.
type Reconciler struct {
	state *ViewState
}

func NewReconciler(pageSize int) *Reconciler {
	return &Reconciler{state: NewViewState(pageSize)}
}

func (r *Reconciler) State() *ViewState { return r.state }

type transition func(*ViewState, media.Event)

// transitions is the dispatch table: one pure state-transition
// function per event kind, invoked by a single serial dispatcher.
var transitions = map[media.EventKind]transition{
	media.EventConnected:               onConnected,
	media.EventDisconnected:            onDisconnected,
	media.EventParticipantConnected:    onParticipantConnected,
	media.EventParticipantDisconnected: onParticipantDisconnected,
	media.EventTrackSubscribed:         onTrackSubscribed,
	media.EventTrackUnsubscribed:       onTrackUnsubscribed,
	media.EventTrackMuted:              onTrackMuted,
	media.EventTrackUnmuted:            onTrackUnmuted,
}

// Apply runs one event through the dispatch table and returns the
// resulting snapshot.
func (r *Reconciler) Apply(ev media.Event) Snapshot {
	fn, ok := transitions[ev.Kind]
	if !ok {
		log.Warn().Str("module", "session.reconciler").Str("kind", string(ev.Kind)).Msg("unknown event")
		return r.state.Snapshot()
	}
	fn(r.state, ev)
	return r.state.Snapshot()
}

func onConnected(s *ViewState, _ media.Event) {
	// Connection alone creates no tile: the local tile appears only
	// once local media is actually captured and published, which can
	// fail independently of connect.
	s.connected = true
}

func onDisconnected(s *ViewState, _ media.Event) {
	s.reset()
}

func onParticipantConnected(s *ViewState, ev media.Event) {
	s.addMember(ev.Participant, ev.Name)
}

func onParticipantDisconnected(s *ViewState, ev media.Event) {
	s.removeMember(ev.Participant)
	delete(s.videoTracks, ev.Participant)
	s.dropTile(ev.Participant)
}

func onTrackSubscribed(s *ViewState, ev media.Event) {
	if ev.Track != domain.TrackVideo {
		// Audio attaches to the media sink only; it has no tile.
		return
	}
	s.videoTracks[ev.Participant]++
	name := ev.Name
	if name == "" {
		name = s.memberName(ev.Participant)
	}
	if s.Registry.UpsertRemote(ev.Participant, name) {
		s.Pager.Recompute(s.Registry.Len())
	}
}

func onTrackUnsubscribed(s *ViewState, ev media.Event) {
	if ev.Track != domain.TrackVideo {
		return
	}
	n, ok := s.videoTracks[ev.Participant]
	if !ok {
		return
	}
	n--
	if n > 0 {
		// Still publishing another video track; the tile stays.
		s.videoTracks[ev.Participant] = n
		return
	}
	delete(s.videoTracks, ev.Participant)
	s.dropTile(ev.Participant)
}

func onTrackMuted(s *ViewState, ev media.Event) {
	s.Registry.SetMute(ev.Participant, ev.Track, true)
}

func onTrackUnmuted(s *ViewState, ev media.Event) {
	s.Registry.SetMute(ev.Participant, ev.Track, false)
}

// dropTile removes a tile, clears focus if it held it, and recomputes
// pagination in one logical transaction, so a focused tile never
// outlives its registry entry.
func (s *ViewState) dropTile(id domain.ParticipantID) {
	if !s.Registry.Remove(id) {
		return
	}
	if s.Focus.Is(id) {
		s.Focus.Clear()
	}
	s.Pager.Recompute(s.Registry.Len())
}

// LocalPublished records that local capture succeeded and its tracks
// are live: the local tile appears, pinned first.
func (r *Reconciler) LocalPublished(name string) Snapshot {
	r.state.localName = name
	if r.state.Registry.UpsertLocal(name) {
		r.state.Pager.Recompute(r.state.Registry.Len())
	}
	return r.state.Snapshot()
}

// LocalMuted flips a local mute badge after the transport confirmed a
// camera or microphone toggle.
func (r *Reconciler) LocalMuted(kind domain.TrackKind, muted bool) Snapshot {
	r.state.Registry.SetMute(domain.Local, kind, muted)
	return r.state.Snapshot()
}

// ChangePage handles user pagination, clamped by the pager.
func (r *Reconciler) ChangePage(delta int) Snapshot {
	r.state.Pager.ChangePage(delta)
	return r.state.Snapshot()
}

// FocusTile spotlights a tile. Focusing an id not in the registry is
// a no-op, guarding the race between a click and a concurrent
// removal.
func (r *Reconciler) FocusTile(id domain.ParticipantID) Snapshot {
	if r.state.Registry.Contains(id) {
		r.state.Focus.Set(id)
	}
	return r.state.Snapshot()
}

func (r *Reconciler) ClearFocus() Snapshot {
	r.state.Focus.Clear()
	return r.state.Snapshot()
}
