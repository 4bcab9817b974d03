// Package client is the viewer's adapter to the token service: the
// room directory fetch before join and the token request at join.
// Both are one-shot request/response calls outside the live event
// loop.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okri/mosaic/internal/domain"
)

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Rooms fetches the public directory.
func (c *Client) Rooms(ctx context.Context) ([]domain.RoomInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rooms", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("room directory: %s", resp.Status)
	}
	var rooms []domain.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Token requests a join capability for (room, name, role). A non-2xx
// response aborts the join attempt; the caller surfaces the failure
// instead of retrying.
func (c *Client) Token(ctx context.Context, room, name string, role domain.JoinRole) (string, error) {
	body, err := json.Marshal(struct {
		RoomName        string `json:"roomName"`
		ParticipantName string `json:"participantName"`
		Role            string `json:"role"`
	}{room, name, string(role)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token server error: %s: %s", resp.Status, msg)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}
