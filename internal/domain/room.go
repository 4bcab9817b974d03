package domain

type RoomName string

// RoomInfo is the public directory projection of a room: its name and
// how many connected participants hold a non-publishing grant.
type RoomInfo struct {
	Name        RoomName `json:"name"`
	ViewerCount int      `json:"viewerCount"`
}
