package session

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/okri/mosaic/internal/domain"
	"github.com/okri/mosaic/internal/media"
)

// Loop is the single serial dispatcher. One goroutine drains
// transport events and posted commands; every mutation of the view
// state happens on that goroutine, so the registry, pager and focus
// need no locks. Renderers consume snapshots from Snapshots(), which
// always carries the latest state (intermediate snapshots may be
// skipped under bursts, never reordered).
type Loop struct {
	rec  *Reconciler
	sess media.Session

	cmds  chan func()
	snaps chan Snapshot

	// gen increments on every self-disconnect. Async media
	// acquisitions capture it at start and drop their completion if
	// it moved. Read and written only on the loop goroutine.
	gen int

	// pendingAttach holds a media attach requested before the join
	// ack arrived; it runs once on the next connected event.
	pendingAttach func()

	cameraOff bool
	micOff    bool
}

func NewLoop(sess media.Session, pageSize int) *Loop {
	return &Loop{
		rec:   NewReconciler(pageSize),
		sess:  sess,
		cmds:  make(chan func(), 16),
		snaps: make(chan Snapshot, 1),
	}
}

// Snapshots delivers the latest view snapshot after each applied
// event or command.
func (l *Loop) Snapshots() <-chan Snapshot { return l.snaps }

// Run processes until ctx is canceled or the transport closes its
// event channel. It must be the only goroutine touching the state.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "session.loop").Msg("loop ctx done")
			return
		case ev, ok := <-l.sess.Events():
			if !ok {
				log.Info().Str("module", "session.loop").Msg("event channel closed")
				return
			}
			snap := l.rec.Apply(ev)
			switch ev.Kind {
			case media.EventDisconnected:
				l.gen++
				l.pendingAttach = nil
			case media.EventConnected:
				if fn := l.pendingAttach; fn != nil {
					l.pendingAttach = nil
					fn()
				}
			}
			l.publish(snap)
		case fn := <-l.cmds:
			fn()
		}
	}
}

func (l *Loop) post(fn func()) {
	l.cmds <- fn
}

// publish replaces any unconsumed snapshot so a slow renderer always
// sees the newest state.
func (l *Loop) publish(s Snapshot) {
	for {
		select {
		case l.snaps <- s:
			return
		default:
			select {
			case <-l.snaps:
			default:
			}
		}
	}
}

// ChangePage posts a user page navigation onto the serial queue.
func (l *Loop) ChangePage(delta int) {
	l.post(func() {
		l.publish(l.rec.ChangePage(delta))
	})
}

// FocusTile posts a tile click.
func (l *Loop) FocusTile(id domain.ParticipantID) {
	l.post(func() {
		l.publish(l.rec.FocusTile(id))
	})
}

// ClearFocus posts an overlay dismissal.
func (l *Loop) ClearFocus() {
	l.post(func() {
		l.publish(l.rec.ClearFocus())
	})
}

// AttachLocalMedia captures and publishes local tracks without
// blocking event delivery. Requested before the join ack, the attach
// waits for the connected event. Acquisition runs as an independent
// task; its completion is posted back onto the serial queue and
// re-checks session liveness, so a camera acquired after the user
// already left cannot resurrect a tile. Acquisition failure degrades
// the session to view-only instead of tearing it down.
func (l *Loop) AttachLocalMedia(ctx context.Context, name string, acquire func(context.Context) ([]media.LocalTrack, error)) {
	l.post(func() {
		if !l.rec.State().Connected() {
			l.pendingAttach = func() { l.startAttach(ctx, name, acquire) }
			return
		}
		l.startAttach(ctx, name, acquire)
	})
}

// startAttach runs on the loop goroutine with the session connected.
func (l *Loop) startAttach(ctx context.Context, name string, acquire func(context.Context) ([]media.LocalTrack, error)) {
	start := l.gen
	go func() {
		tracks, err := acquire(ctx)
		if err != nil {
			log.Error().Err(err).Str("module", "session.loop").Msg("local media acquisition failed, view-only")
			return
		}
		for _, track := range tracks {
			if err := l.sess.PublishTrack(ctx, track); err != nil {
				log.Error().Err(err).Str("module", "session.loop").Str("kind", string(track.Kind())).Msg("publish failed, view-only")
				return
			}
		}
		l.post(func() {
			if l.gen != start || !l.rec.State().Connected() {
				log.Info().Str("module", "session.loop").Msg("dropped stale media completion")
				return
			}
			l.publish(l.rec.LocalPublished(name))
		})
	}()
}

// ToggleCamera flips the local camera. The transport call runs off
// the loop; the flag and the local mute badge move only once it
// succeeds, so a failed call leaves the tracked device state intact
// and the next toggle retries the same transition.
func (l *Loop) ToggleCamera(ctx context.Context) {
	l.post(func() {
		enabled := l.cameraOff
		go func() {
			if err := l.sess.SetCameraEnabled(ctx, enabled); err != nil {
				log.Error().Err(err).Str("module", "session.loop").Msg("toggle camera")
				return
			}
			l.post(func() {
				l.cameraOff = !enabled
				l.publish(l.rec.LocalMuted(domain.TrackVideo, !enabled))
			})
		}()
	})
}

// ToggleMicrophone flips the local microphone.
func (l *Loop) ToggleMicrophone(ctx context.Context) {
	l.post(func() {
		enabled := l.micOff
		go func() {
			if err := l.sess.SetMicrophoneEnabled(ctx, enabled); err != nil {
				log.Error().Err(err).Str("module", "session.loop").Msg("toggle microphone")
				return
			}
			l.post(func() {
				l.micOff = !enabled
				l.publish(l.rec.LocalMuted(domain.TrackAudio, !enabled))
			})
		}()
	})
}
