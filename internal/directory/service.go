// Package directory projects the media server's room list into the
// public directory: room names with viewer counts, where a viewer is
// a participant whose grant withholds publish.
package directory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/domain"
	"github.com/okri/mosaic/internal/roomsvc"
)

type Service struct {
	rooms roomsvc.Client
	cache Cache
}

// NewService builds the directory over the room admin client. cache
// may be nil; listing then always hits the media server.
func NewService(rooms roomsvc.Client, cache Cache) *Service {
	return &Service{rooms: rooms, cache: cache}
}

// List returns the public directory, read-through cached.
func (s *Service) List(ctx context.Context) ([]domain.RoomInfo, error) {
	if s.cache != nil {
		if rooms, ok := s.cache.Get(ctx); ok {
			return rooms, nil
		}
	}

	rooms, err := s.rooms.Rooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	out := make([]domain.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		info := domain.RoomInfo{Name: domain.RoomName(room.Name)}
		participants, err := s.rooms.Participants(ctx, room.Name)
		if err != nil {
			// A room can vanish between the two calls; publish it
			// with a zero viewer count rather than failing the list.
			log.Warn().Err(err).Str("module", "directory").Str("room", room.Name).Msg("list participants")
		} else {
			info.ViewerCount = roomsvc.ViewerCount(participants)
		}
		out = append(out, info)
	}

	if s.cache != nil {
		s.cache.Set(ctx, out)
	}
	return out, nil
}
