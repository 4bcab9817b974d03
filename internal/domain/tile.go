package domain

// TrackKind distinguishes the two media track classes a participant
// can publish.
type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// Tile is one participant's visual unit: a live video feed plus its
// mute badges. At most one Tile exists per participant; the registry
// enforces that.
type Tile struct {
	ID          ParticipantID `json:"id"`
	DisplayName string        `json:"display_name"`
	HasVideo    bool          `json:"has_video"`
	AudioMuted  bool          `json:"audio_muted"`
	VideoMuted  bool          `json:"video_muted"`
}
