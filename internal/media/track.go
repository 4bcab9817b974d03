package media

import (
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/okri/mosaic/internal/domain"
)

// sampleTrack wraps a pion local track behind the LocalTrack handle.
type sampleTrack struct {
	kind  domain.TrackKind
	track *webrtc.TrackLocalStaticSample
}

func (t *sampleTrack) ID() string             { return t.track.ID() }
func (t *sampleTrack) Kind() domain.TrackKind { return t.kind }

// NewCameraTrack captures a VP8 video track for the local camera.
func NewCameraTrack() (LocalTrack, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"camera-"+uuid.NewString(),
		"mosaic-local",
	)
	if err != nil {
		return nil, err
	}
	return &sampleTrack{kind: domain.TrackVideo, track: track}, nil
}

// NewMicrophoneTrack captures an Opus audio track for the local
// microphone.
func NewMicrophoneTrack() (LocalTrack, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"mic-"+uuid.NewString(),
		"mosaic-local",
	)
	if err != nil {
		return nil, err
	}
	return &sampleTrack{kind: domain.TrackAudio, track: track}, nil
}
