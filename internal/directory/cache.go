package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/domain"
)

const roomsKey = "mosaic:rooms"

// Cache shields the media server from directory polling. A miss is
// not an error; the service falls through to the room admin API.
type Cache interface {
	Get(ctx context.Context) ([]domain.RoomInfo, bool)
	Set(ctx context.Context, rooms []domain.RoomInfo)
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) Cache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context) ([]domain.RoomInfo, bool) {
	raw, err := c.rdb.Get(ctx, roomsKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("module", "directory.cache").Msg("cache get")
		}
		return nil, false
	}
	var rooms []domain.RoomInfo
	if err := json.Unmarshal([]byte(raw), &rooms); err != nil {
		log.Warn().Err(err).Str("module", "directory.cache").Msg("cache decode")
		return nil, false
	}
	return rooms, true
}

func (c *redisCache) Set(ctx context.Context, rooms []domain.RoomInfo) {
	b, err := json.Marshal(rooms)
	if err != nil {
		log.Warn().Err(err).Str("module", "directory.cache").Msg("cache encode")
		return
	}
	if err := c.rdb.Set(ctx, roomsKey, b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("module", "directory.cache").Msg("cache set")
	}
}
