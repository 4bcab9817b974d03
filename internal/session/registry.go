// Package session holds the client-side conference state machine:
// the tile registry, the pagination engine, the focus controller and
// the reconciler that maps transport events onto them. Everything
// here assumes a single serial caller; the Loop provides that.
package session

import (
	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/domain"
)

// Registry is the authoritative ordered collection of camera tiles.
// Insertion order is kept stable across unrelated mutations; the
// local tile, when present, is pinned at index 0. Every operation is
// total: an absent id is a valid, silently ignored input, because
// session events race with UI teardown.
type Registry struct {
	tiles []domain.Tile
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Len() int { return len(r.tiles) }

// Tiles returns a copy of the current order, local first.
func (r *Registry) Tiles() []domain.Tile {
	out := make([]domain.Tile, len(r.tiles))
	copy(out, r.tiles)
	return out
}

func (r *Registry) Contains(id domain.ParticipantID) bool {
	return r.find(id) >= 0
}

func (r *Registry) find(id domain.ParticipantID) int {
	for i := range r.tiles {
		if r.tiles[i].ID == id {
			return i
		}
	}
	return -1
}

// UpsertRemote appends a tile for a remote participant. If the tile
// already exists its position and flags are untouched; the call
// reports whether membership changed.
func (r *Registry) UpsertRemote(id domain.ParticipantID, name string) bool {
	if i := r.find(id); i >= 0 {
		return false
	}
	r.tiles = append(r.tiles, domain.Tile{
		ID:          id,
		DisplayName: name,
		HasVideo:    true,
	})
	log.Debug().Str("module", "session.registry").Str("id", string(id)).Msg("tile added")
	return true
}

// UpsertLocal ensures exactly one local tile at index 0.
func (r *Registry) UpsertLocal(name string) bool {
	if i := r.find(domain.Local); i >= 0 {
		return false
	}
	local := domain.Tile{
		ID:          domain.Local,
		DisplayName: name,
		HasVideo:    true,
	}
	r.tiles = append([]domain.Tile{local}, r.tiles...)
	log.Debug().Str("module", "session.registry").Msg("local tile added")
	return true
}

// Remove deletes the tile with id, preserving the relative order of
// the remaining tiles. Removing an absent id is a no-op.
func (r *Registry) Remove(id domain.ParticipantID) bool {
	i := r.find(id)
	if i < 0 {
		return false
	}
	r.tiles = append(r.tiles[:i], r.tiles[i+1:]...)
	log.Debug().Str("module", "session.registry").Str("id", string(id)).Msg("tile removed")
	return true
}

// SetMute updates a mute badge. Membership and order are untouched;
// an absent id is ignored since mute events may trail a removal.
func (r *Registry) SetMute(id domain.ParticipantID, kind domain.TrackKind, muted bool) bool {
	i := r.find(id)
	if i < 0 {
		return false
	}
	switch kind {
	case domain.TrackAudio:
		r.tiles[i].AudioMuted = muted
	case domain.TrackVideo:
		r.tiles[i].VideoMuted = muted
	default:
		return false
	}
	return true
}

func (r *Registry) Clear() {
	r.tiles = nil
}
