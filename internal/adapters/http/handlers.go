package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/domain"
)

type tokenRequest struct {
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName"`
	Role            string `json:"role"`
}

type tokenResponse struct {
	Token           string `json:"token"`
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName"`
}

// IssueToken signs a join capability. The role scopes publish rights:
// viewer tokens cannot publish, everything else can.
func (h *Handlers) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomName == "" || req.ParticipantName == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "roomName and participantName are required",
		})
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	tok, err := h.Issuer.Issue(req.RoomName, req.ParticipantName, role)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	log.Info().
		Str("module", "adapters.http").
		Str("room", req.RoomName).
		Str("participant", req.ParticipantName).
		Str("role", string(role)).
		Msg("token issued")

	c.JSON(http.StatusOK, tokenResponse{
		Token:           tok,
		RoomName:        req.RoomName,
		ParticipantName: req.ParticipantName,
	})
}

// ListRooms serves the public directory.
func (h *Handlers) ListRooms(c *gin.Context) {
	rooms, err := h.Directory.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
