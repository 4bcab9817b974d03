package media

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("session closed")
	ErrBadTrack     = errors.New("track was not created by this package")
)

func DefaultRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// wsSession drives the signal socket and the peer connection. The
// signal plane is authoritative for session events; the peer
// connection only carries media.
type wsSession struct {
	mu      sync.RWMutex
	conn    *websocket.Conn
	pc      *webrtc.PeerConnection
	send    chan []byte
	events  chan Event
	answers chan string
	closed  bool
	cancel  context.CancelFunc

	discOnce sync.Once
}

func NewSession() Session {
	return &wsSession{
		send:    make(chan []byte, 32),
		events:  make(chan Event, 64),
		answers: make(chan string, 1),
	}
}

func (s *wsSession) Events() <-chan Event { return s.events }

func (s *wsSession) Connect(ctx context.Context, url, token string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url+"?access_token="+token, nil)
	if err != nil {
		return err
	}

	pc, err := webrtc.NewPeerConnection(DefaultRTCConfig())
	if err != nil {
		_ = conn.Close()
		return err
	}

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil {
			s.sendCandidate(cand.ToJSON())
		}
	})
	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		// Media plane only. Tile lifecycle follows the signal
		// plane's track_subscribed / track_unsubscribed envelopes.
		log.Info().
			Str("module", "media.ws").
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("remote track")
	})
	pc.OnConnectionStateChange(func(st webrtc.PeerConnectionState) {
		log.Info().Str("module", "media.ws").Str("peer_state", st.String()).Msg("peer state")
	})

	runCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.conn = conn
	s.pc = pc
	s.cancel = cancel
	s.mu.Unlock()

	go s.writePump(runCtx)
	go s.readPump()

	return nil
}

func (s *wsSession) Disconnect() {
	s.sendJSON(map[string]string{"type": "leave"})
	s.close()
}

func (s *wsSession) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.pc != nil {
		_ = s.pc.Close()
	}
	s.mu.Unlock()
}

// emitDisconnected delivers exactly one terminal event and then
// closes the event stream so consumers can drain and exit. It runs
// only on the read goroutine, the sole sender, so the close can never
// race a send.
func (s *wsSession) emitDisconnected() {
	s.discOnce.Do(func() {
		s.events <- Event{Kind: EventDisconnected}
		close(s.events)
	})
}

func (s *wsSession) PublishTrack(ctx context.Context, track LocalTrack) error {
	st, ok := track.(*sampleTrack)
	if !ok {
		return ErrBadTrack
	}

	s.mu.RLock()
	pc := s.pc
	closed := s.closed
	s.mu.RUnlock()
	if closed || pc == nil {
		return ErrClosed
	}

	if _, err := pc.AddTrack(st.track); err != nil {
		return err
	}

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return err
	}
	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(offer); err != nil {
		return err
	}
	<-gatherComplete

	s.sendJSON(map[string]string{
		"type": "offer",
		"sdp":  pc.LocalDescription().SDP,
	})

	select {
	case sdp := <-s.answers:
		return pc.SetRemoteDescription(webrtc.SessionDescription{
			Type: webrtc.SDPTypeAnswer,
			SDP:  sdp,
		})
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *wsSession) SetCameraEnabled(ctx context.Context, enabled bool) error {
	return s.sendCommand("set_camera", enabled)
}

func (s *wsSession) SetMicrophoneEnabled(ctx context.Context, enabled bool) error {
	return s.sendCommand("set_microphone", enabled)
}

func (s *wsSession) sendCommand(kind string, enabled bool) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	s.sendJSON(struct {
		Type    string `json:"type"`
		Enabled bool   `json:"enabled"`
	}{kind, enabled})
	return nil
}

func (s *wsSession) trySend(b []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (s *wsSession) sendJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "media.ws").Msg("sendJSON marshal")
		return
	}
	if err := s.trySend(b); err != nil {
		log.Warn().Err(err).Str("module", "media.ws").Msg("sendJSON dropped")
	}
}

func (s *wsSession) sendCandidate(ci webrtc.ICECandidateInit) {
	resp := struct {
		Type          string `json:"type"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid,omitempty"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex,omitempty"`
	}{
		Type:      "candidate",
		Candidate: ci.Candidate,
	}
	if ci.SDPMid != nil {
		resp.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		resp.SDPMLineIndex = *ci.SDPMLineIndex
	}
	s.sendJSON(resp)
}

func (s *wsSession) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-s.send:
			if err := s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "media.ws").Msg("writePump set deadline")
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "media.ws").Msg("writePump write error")
				return
			}
		}
	}
}

func (s *wsSession) readPump() {
	defer func() {
		s.close()
		s.emitDisconnected()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Str("module", "media.ws").Msg("readPump closing")
			return
		}
		s.handleSignal(data)
	}
}

func (s *wsSession) handleSignal(data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "media.ws").Msg("bad json")
		return
	}

	switch env.Type {
	case "joined":
		s.events <- Event{Kind: EventConnected}
	case "participant_joined":
		s.handleParticipant(EventParticipantConnected, data)
	case "participant_left":
		s.handleParticipant(EventParticipantDisconnected, data)
	case "track_subscribed":
		s.handleTrack(EventTrackSubscribed, data)
	case "track_unsubscribed":
		s.handleTrack(EventTrackUnsubscribed, data)
	case "track_muted":
		s.handleTrack(EventTrackMuted, data)
	case "track_unmuted":
		s.handleTrack(EventTrackUnmuted, data)
	case "answer":
		s.handleAnswer(data)
	case "candidate":
		s.handleCandidate(data)
	default:
		log.Warn().Str("module", "media.ws").Str("type", env.Type).Msg("unknown signal")
	}
}

func (s *wsSession) handleParticipant(kind EventKind, data []byte) {
	var p struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "media.ws").Msg("bad participant payload")
		return
	}
	s.events <- Event{
		Kind:        kind,
		Participant: domain.ParticipantID(p.ID),
		Name:        p.Name,
	}
}

func (s *wsSession) handleTrack(kind EventKind, data []byte) {
	var p struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Kind string `json:"kind"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "media.ws").Msg("bad track payload")
		return
	}
	s.events <- Event{
		Kind:        kind,
		Participant: domain.ParticipantID(p.ID),
		Name:        p.Name,
		Track:       domain.TrackKind(p.Kind),
	}
}

func (s *wsSession) handleAnswer(data []byte) {
	var p struct {
		Type string `json:"type"`
		SDP  string `json:"sdp"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "media.ws").Msg("bad answer payload")
		return
	}
	select {
	case s.answers <- p.SDP:
	default:
		log.Warn().Str("module", "media.ws").Msg("answer with no pending offer")
	}
}

func (s *wsSession) handleCandidate(data []byte) {
	var p struct {
		Type          string `json:"type"`
		Candidate     string `json:"candidate"`
		SDPMid        string `json:"sdpMid"`
		SDPMLineIndex uint16 `json:"sdpMLineIndex"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "media.ws").Msg("bad candidate payload")
		return
	}

	cand := webrtc.ICECandidateInit{Candidate: p.Candidate}
	if p.SDPMid != "" {
		cand.SDPMid = &p.SDPMid
	}
	cand.SDPMLineIndex = &p.SDPMLineIndex

	s.mu.RLock()
	pc := s.pc
	s.mu.RUnlock()
	if pc == nil {
		return
	}
	if err := pc.AddICECandidate(cand); err != nil {
		log.Error().Err(err).Str("module", "media.ws").Msg("add ice candidate")
	}
}
