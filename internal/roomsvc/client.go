// Package roomsvc is a thin client for the media server's room admin
// REST API. The token service uses it to create and delete rooms and
// to project the public directory; nothing else talks to the media
// server over HTTP.
package roomsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Room is the admin view of a room.
type Room struct {
	Name            string `json:"name"`
	NumParticipants int    `json:"num_participants"`
	MaxParticipants int    `json:"max_participants"`
	CreatedAt       int64  `json:"created_at"`
}

// Participant is the admin view of one connected participant,
// including the publish capability from its grant.
type Participant struct {
	Identity   string `json:"identity"`
	Name       string `json:"name"`
	CanPublish bool   `json:"can_publish"`
	JoinedAt   int64  `json:"joined_at"`
}

// CreateRoomRequest mirrors the media server's create-room options.
type CreateRoomRequest struct {
	Name            string `json:"name"`
	MaxParticipants int    `json:"max_participants,omitempty"`
	MaxPublishers   int    `json:"max_publishers,omitempty"`
	EmptyTimeout    int    `json:"empty_timeout,omitempty"` // seconds
}

// Client is the room admin surface the handlers depend on. Tests
// substitute a fake.
type Client interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) error
	DeleteRoom(ctx context.Context, name string) error
	Room(ctx context.Context, name string) (*Room, error)
	Participants(ctx context.Context, name string) ([]Participant, error)
	Rooms(ctx context.Context) ([]Room, error)
}

type httpClient struct {
	baseURL   string
	apiKey    string
	apiSecret []byte
	hc        *http.Client
}

func NewClient(baseURL, apiKey, apiSecret string) Client {
	return &httpClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		hc:        &http.Client{Timeout: 10 * time.Second},
	}
}

// adminToken signs a short-lived capability authorizing room
// administration, the same shape the join tokens use.
func (c *httpClient) adminToken() (string, error) {
	now := time.Now()
	claims := struct {
		Video struct {
			RoomAdmin bool `json:"roomAdmin"`
		} `json:"video"`
		jwt.RegisteredClaims
	}{}
	claims.Video.RoomAdmin = true
	claims.Issuer = c.apiKey
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Minute))

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.apiSecret)
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	tok, err := c.adminToken()
	if err != nil {
		return fmt.Errorf("sign admin token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("room service %s %s: %s: %s", method, path, resp.Status, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *httpClient) CreateRoom(ctx context.Context, req CreateRoomRequest) error {
	return c.do(ctx, http.MethodPost, "/rooms", req, nil)
}

func (c *httpClient) DeleteRoom(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(name), nil, nil)
}

func (c *httpClient) Room(ctx context.Context, name string) (*Room, error) {
	var room Room
	if err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(name), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *httpClient) Participants(ctx context.Context, name string) ([]Participant, error) {
	var out []Participant
	if err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(name)+"/participants", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) Rooms(ctx context.Context) ([]Room, error) {
	var out []Room
	if err := c.do(ctx, http.MethodGet, "/rooms", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ViewerCount counts participants whose grant withholds publish,
// the definition the public directory exposes.
func ViewerCount(participants []Participant) int {
	n := 0
	for _, p := range participants {
		if !p.CanPublish {
			n++
		}
	}
	return n
}
