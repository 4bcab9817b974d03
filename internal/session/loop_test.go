package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okri/mosaic/internal/domain"
	"github.com/okri/mosaic/internal/media"
)

type fakeTrack struct {
	kind domain.TrackKind
}

func (f *fakeTrack) ID() string             { return "fake-" + string(f.kind) }
func (f *fakeTrack) Kind() domain.TrackKind { return f.kind }

type fakeSession struct {
	events chan media.Event

	mu        sync.Mutex
	published []media.LocalTrack
	camera    []bool
	mic       []bool
	cameraErr error
}

func newFakeSession() *fakeSession {
	return &fakeSession{events: make(chan media.Event, 16)}
}

func (f *fakeSession) Connect(context.Context, string, string) error { return nil }
func (f *fakeSession) Disconnect()                                   {}
func (f *fakeSession) Events() <-chan media.Event                    { return f.events }

func (f *fakeSession) PublishTrack(_ context.Context, track media.LocalTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, track)
	return nil
}

func (f *fakeSession) SetCameraEnabled(_ context.Context, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.camera = append(f.camera, enabled)
	return f.cameraErr
}

func (f *fakeSession) SetMicrophoneEnabled(_ context.Context, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mic = append(f.mic, enabled)
	return nil
}

func (f *fakeSession) publishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func (f *fakeSession) cameraCalls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.camera))
	copy(out, f.camera)
	return out
}

func (f *fakeSession) setCameraErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cameraErr = err
}

// waitFor drains snapshots until cond holds or the test times out.
func waitFor(t *testing.T, snaps <-chan Snapshot, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-snaps:
			if cond(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("snapshot condition not met")
		}
	}
}

func startLoop(t *testing.T, sess media.Session) *Loop {
	t.Helper()
	loop := NewLoop(sess, 4)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)
	return loop
}

func TestLoopAppliesEventBurstInOrder(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	sess.events <- media.Event{Kind: media.EventConnected}
	for _, id := range []domain.ParticipantID{"a", "b", "c", "d", "e"} {
		sess.events <- videoSubscribed(id, string(id))
	}

	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool {
		return len(s.Tiles) == 5
	})
	assert.Equal(t, 1, snap.MaxPage)
	assert.Equal(t, domain.ParticipantID("a"), snap.Tiles[0].ID)
	assert.Equal(t, domain.ParticipantID("e"), snap.Tiles[4].ID)
}

func TestLoopUserNavigation(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	sess.events <- media.Event{Kind: media.EventConnected}
	for _, id := range []domain.ParticipantID{"a", "b", "c", "d", "e"} {
		sess.events <- videoSubscribed(id, string(id))
	}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return len(s.Tiles) == 5 })

	loop.ChangePage(+1)
	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Page == 1 })
	require.Len(t, snap.Visible, 1)

	loop.FocusTile("a")
	snap = waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Focused == "a" })
	// Focus does not move the page.
	assert.Equal(t, 1, snap.Page)

	loop.ClearFocus()
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Focused == "" })
}

func TestLoopLocalMediaAttaches(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	sess.events <- media.Event{Kind: media.EventConnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Connected })

	loop.AttachLocalMedia(context.Background(), "Me", func(context.Context) ([]media.LocalTrack, error) {
		return []media.LocalTrack{
			&fakeTrack{kind: domain.TrackVideo},
			&fakeTrack{kind: domain.TrackAudio},
		}, nil
	})

	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return len(s.Tiles) == 1 })
	assert.Equal(t, domain.Local, snap.Tiles[0].ID)
	assert.Equal(t, 2, sess.publishedCount())
}

func TestLoopAttachBeforeConnectWaits(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	// Attach is requested right after dialing, before the join ack.
	loop.AttachLocalMedia(context.Background(), "Me", func(context.Context) ([]media.LocalTrack, error) {
		return []media.LocalTrack{&fakeTrack{kind: domain.TrackVideo}}, nil
	})

	sess.events <- media.Event{Kind: media.EventConnected}
	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return len(s.Tiles) == 1 })
	assert.Equal(t, domain.Local, snap.Tiles[0].ID)
	assert.Equal(t, 1, sess.publishedCount())
}

func TestLoopDropsStaleMediaCompletion(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	sess.events <- media.Event{Kind: media.EventConnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Connected })

	release := make(chan struct{})
	loop.AttachLocalMedia(context.Background(), "Me", func(context.Context) ([]media.LocalTrack, error) {
		<-release
		return []media.LocalTrack{&fakeTrack{kind: domain.TrackVideo}}, nil
	})

	// The user leaves while the camera is still being acquired, then
	// rejoins. The old acquisition must not resurrect a tile.
	sess.events <- media.Event{Kind: media.EventDisconnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return !s.Connected })
	sess.events <- media.Event{Kind: media.EventConnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Connected })

	close(release)
	time.Sleep(100 * time.Millisecond)

	sess.events <- videoSubscribed("a", "Alice")
	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return len(s.Tiles) > 0 })
	require.Len(t, snap.Tiles, 1)
	assert.Equal(t, domain.ParticipantID("a"), snap.Tiles[0].ID, "no local tile resurrected")
}

func TestLoopAcquisitionFailureIsViewOnly(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	sess.events <- media.Event{Kind: media.EventConnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Connected })

	loop.AttachLocalMedia(context.Background(), "Me", func(context.Context) ([]media.LocalTrack, error) {
		return nil, context.DeadlineExceeded
	})

	// The session stays alive and remote tiles still arrive.
	sess.events <- videoSubscribed("a", "Alice")
	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return len(s.Tiles) == 1 })
	assert.Equal(t, domain.ParticipantID("a"), snap.Tiles[0].ID)
	assert.Zero(t, sess.publishedCount())
}

func TestLoopToggleCamera(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	sess.events <- media.Event{Kind: media.EventConnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Connected })

	loop.AttachLocalMedia(context.Background(), "Me", func(context.Context) ([]media.LocalTrack, error) {
		return []media.LocalTrack{&fakeTrack{kind: domain.TrackVideo}}, nil
	})
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return len(s.Tiles) == 1 })

	loop.ToggleCamera(context.Background())
	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Tiles[0].VideoMuted })
	assert.True(t, snap.Tiles[0].VideoMuted)

	loop.ToggleCamera(context.Background())
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return !s.Tiles[0].VideoMuted })

	assert.Equal(t, []bool{false, true}, sess.cameraCalls())
}

func TestLoopToggleCameraFailureKeepsState(t *testing.T) {
	sess := newFakeSession()
	loop := startLoop(t, sess)

	sess.events <- media.Event{Kind: media.EventConnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Connected })

	loop.AttachLocalMedia(context.Background(), "Me", func(context.Context) ([]media.LocalTrack, error) {
		return []media.LocalTrack{&fakeTrack{kind: domain.TrackVideo}}, nil
	})
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return len(s.Tiles) == 1 })

	sess.setCameraErr(errors.New("signal socket gone"))
	loop.ToggleCamera(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for len(sess.cameraCalls()) < 1 {
		if time.Now().After(deadline) {
			t.Fatal("camera command never reached the transport")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The flag must not move on failure: the transport still has the
	// camera on, so the retry asks to disable again.
	sess.setCameraErr(nil)
	loop.ToggleCamera(context.Background())

	snap := waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Tiles[0].VideoMuted })
	assert.True(t, snap.Tiles[0].VideoMuted)
	assert.Equal(t, []bool{false, false}, sess.cameraCalls())
}

func TestLoopExitsWhenTransportCloses(t *testing.T) {
	sess := newFakeSession()
	loop := NewLoop(sess, 4)

	done := make(chan struct{})
	go func() {
		loop.Run(context.Background())
		close(done)
	}()

	sess.events <- media.Event{Kind: media.EventConnected}
	waitFor(t, loop.Snapshots(), func(s Snapshot) bool { return s.Connected })

	// The transport delivers its terminal event and closes the stream.
	sess.events <- media.Event{Kind: media.EventDisconnected}
	close(sess.events)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after the event stream closed")
	}
}
