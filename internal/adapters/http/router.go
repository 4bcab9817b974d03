// Package http is the token service's HTTP surface: token issuing,
// the public room directory, health, and the bearer-guarded admin
// endpoints.
package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/config"
	"github.com/okri/mosaic/internal/directory"
	"github.com/okri/mosaic/internal/roomsvc"
	"github.com/okri/mosaic/internal/token"
)

const (
	tokenRateLimit  = 30
	tokenRateWindow = time.Minute
)

type Handlers struct {
	Issuer      *token.Issuer
	Directory   *directory.Service
	Rooms       roomsvc.Client
	AdminSecret string
}

func SetupRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.POST("/token", TokenRateLimit(NewRateLimiter(tokenRateLimit, tokenRateWindow)), h.IssueToken)
	r.GET("/rooms", h.ListRooms)
	r.GET("/health", h.Health)

	admin := r.Group("/admin", AdminAuth(h.AdminSecret))
	admin.POST("/create-room", h.CreateRoom)
	admin.DELETE("/delete-room", h.DeleteRoom)
	admin.GET("/room-info/:roomName", h.RoomInfo)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
