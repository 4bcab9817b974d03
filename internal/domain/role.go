package domain

import "errors"

// JoinRole selects what a participant is allowed to do in a room.
// A camera captures and publishes local media; a viewer only
// subscribes.
type JoinRole string

const (
	RoleCamera JoinRole = "camera"
	RoleViewer JoinRole = "viewer"
)

var ErrUnknownRole = errors.New("unknown join role")

// ParseRole maps the wire value to a JoinRole. An empty role defaults
// to camera, matching the token service contract.
func ParseRole(s string) (JoinRole, error) {
	switch s {
	case "", string(RoleCamera):
		return RoleCamera, nil
	case string(RoleViewer):
		return RoleViewer, nil
	}
	return "", ErrUnknownRole
}

// Grant is the capability embedded in a signed join token.
type Grant struct {
	Room         string `json:"room"`
	Identity     string `json:"identity"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// RoleGrant derives a Grant from a join role. The mapping is a pure
// function: viewer withholds publish, everything else may publish,
// and subscribe is always allowed.
func RoleGrant(room, identity string, role JoinRole) Grant {
	return Grant{
		Room:         room,
		Identity:     identity,
		RoomJoin:     true,
		CanPublish:   role != RoleViewer,
		CanSubscribe: true,
	}
}
