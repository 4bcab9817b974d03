package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okri/mosaic/internal/roomsvc"
)

func adminRequest(t *testing.T, method, url, bearer string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAdminRequiresBearer(t *testing.T) {
	srv, _ := newTestRouter(&fakeRoomClient{})
	defer srv.Close()

	// No Authorization header at all.
	resp := adminRequest(t, http.MethodPost, srv.URL+"/admin/create-room", "", map[string]string{"roomName": "demo"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Malformed scheme.
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/admin/create-room", bytes.NewBufferString("{}"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic abc")
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, raw.StatusCode)
}

func TestAdminRejectsWrongSecret(t *testing.T) {
	srv, _ := newTestRouter(&fakeRoomClient{})
	defer srv.Close()

	resp := adminRequest(t, http.MethodPost, srv.URL+"/admin/create-room", "not-the-secret", map[string]string{"roomName": "demo"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminDisabledWithoutSecret(t *testing.T) {
	// An empty configured secret must not turn into an open door.
	rooms := &fakeRoomClient{}
	h := &Handlers{Rooms: rooms}
	r := gin.New()
	r.POST("/admin/create-room", AdminAuth(""), h.CreateRoom)
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp := adminRequest(t, http.MethodPost, srv.URL+"/admin/create-room", "anything", map[string]string{"roomName": "demo"})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, rooms.created)
}

func TestCreateRoomDefaults(t *testing.T) {
	rooms := &fakeRoomClient{}
	srv, _ := newTestRouter(rooms)
	defer srv.Close()

	resp := adminRequest(t, http.MethodPost, srv.URL+"/admin/create-room", "admin-secret", map[string]string{"roomName": "demo"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, rooms.created, 1)
	got := rooms.created[0]
	assert.Equal(t, "demo", got.Name)
	assert.Equal(t, 20, got.MaxParticipants)
	assert.Equal(t, 10, got.MaxPublishers)
	assert.Equal(t, 600, got.EmptyTimeout)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "demo", out["roomName"])
}

func TestCreateRoomExplicitLimit(t *testing.T) {
	rooms := &fakeRoomClient{}
	srv, _ := newTestRouter(rooms)
	defer srv.Close()

	resp := adminRequest(t, http.MethodPost, srv.URL+"/admin/create-room", "admin-secret", map[string]any{
		"roomName":        "big",
		"maxParticipants": 50,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, rooms.created, 1)
	assert.Equal(t, 50, rooms.created[0].MaxParticipants)
}

func TestCreateRoomMissingName(t *testing.T) {
	srv, _ := newTestRouter(&fakeRoomClient{})
	defer srv.Close()

	resp := adminRequest(t, http.MethodPost, srv.URL+"/admin/create-room", "admin-secret", map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteRoom(t *testing.T) {
	rooms := &fakeRoomClient{}
	srv, _ := newTestRouter(rooms)
	defer srv.Close()

	resp := adminRequest(t, http.MethodDelete, srv.URL+"/admin/delete-room", "admin-secret", map[string]string{"roomName": "demo"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"demo"}, rooms.deleted)
}

func TestRoomInfo(t *testing.T) {
	rooms := &fakeRoomClient{
		rooms: []roomsvc.Room{{Name: "demo", NumParticipants: 2, MaxParticipants: 20}},
		participants: map[string][]roomsvc.Participant{
			"demo": {
				{Identity: "a", Name: "Alice", CanPublish: true, JoinedAt: 1700000000},
				{Identity: "b", Name: "Bob", CanPublish: false, JoinedAt: 1700000100},
			},
		},
	}
	srv, _ := newTestRouter(rooms)
	defer srv.Close()

	resp := adminRequest(t, http.MethodGet, srv.URL+"/admin/room-info/demo", "admin-secret", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		RoomName     string `json:"roomName"`
		Participants []struct {
			Identity   string `json:"identity"`
			Name       string `json:"name"`
			CanPublish bool   `json:"canPublish"`
			JoinedAt   int64  `json:"joinedAt"`
		} `json:"participants"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "demo", out.RoomName)
	require.Len(t, out.Participants, 2)
	assert.Equal(t, "Alice", out.Participants[0].Name)
	assert.True(t, out.Participants[0].CanPublish)
	assert.False(t, out.Participants[1].CanPublish)
}
