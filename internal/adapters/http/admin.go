package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/roomsvc"
)

const (
	defaultMaxParticipants = 20
	defaultMaxPublishers   = 10
	defaultEmptyTimeout    = 10 * 60 // seconds
)

// AdminAuth guards the admin group with the server-held secret:
// 401 when the bearer token is absent, 403 when it does not match.
// An unset secret disables the surface entirely.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin token required"})
			return
		}
		tok := strings.TrimPrefix(auth, "Bearer ")
		if secret == "" || tok != secret {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid admin token"})
			return
		}
		c.Next()
	}
}

type createRoomRequest struct {
	RoomName        string `json:"roomName"`
	MaxParticipants int    `json:"maxParticipants"`
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomName is required"})
		return
	}
	if req.MaxParticipants == 0 {
		req.MaxParticipants = defaultMaxParticipants
	}

	err := h.Rooms.CreateRoom(c.Request.Context(), roomsvc.CreateRoomRequest{
		Name:            req.RoomName,
		MaxParticipants: req.MaxParticipants,
		MaxPublishers:   defaultMaxPublishers,
		EmptyTimeout:    defaultEmptyTimeout,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", req.RoomName).Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	log.Info().Str("module", "adapters.http").Str("room", req.RoomName).Msg("room created")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"roomName": req.RoomName,
		"message":  "Room created successfully",
	})
}

type deleteRoomRequest struct {
	RoomName string `json:"roomName"`
}

func (h *Handlers) DeleteRoom(c *gin.Context) {
	var req deleteRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomName is required"})
		return
	}

	if err := h.Rooms.DeleteRoom(c.Request.Context(), req.RoomName); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", req.RoomName).Msg("delete room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete room"})
		return
	}

	log.Info().Str("module", "adapters.http").Str("room", req.RoomName).Msg("room deleted")
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"roomName": req.RoomName,
		"message":  "Room deleted successfully",
	})
}

func (h *Handlers) RoomInfo(c *gin.Context) {
	name := c.Param("roomName")

	room, err := h.Rooms.Room(c.Request.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", name).Msg("room info")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get room info"})
		return
	}
	participants, err := h.Rooms.Participants(c.Request.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("room", name).Msg("room participants")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get room info"})
		return
	}

	type participantInfo struct {
		Identity   string `json:"identity"`
		Name       string `json:"name"`
		CanPublish bool   `json:"canPublish"`
		JoinedAt   int64  `json:"joinedAt"`
	}
	out := make([]participantInfo, 0, len(participants))
	for _, p := range participants {
		out = append(out, participantInfo{
			Identity:   p.Identity,
			Name:       p.Name,
			CanPublish: p.CanPublish,
			JoinedAt:   p.JoinedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"roomName":     name,
		"room":         room,
		"participants": out,
	})
}
