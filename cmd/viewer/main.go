// Command viewer joins a conference room as a camera or a viewer and
// renders the paged tile grid as console lines. The renderer lives
// here, outside the core: it only diffs snapshots.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/okri/mosaic/internal/adapters/client"
	"github.com/okri/mosaic/internal/config"
	"github.com/okri/mosaic/internal/domain"
	"github.com/okri/mosaic/internal/media"
	"github.com/okri/mosaic/internal/session"
)

const joinTimeout = 15 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	var (
		room    = pflag.String("room", "", "room to join")
		name    = pflag.String("name", "", "participant name")
		roleStr = pflag.String("role", "camera", "join role: camera or viewer")
		tokend  = pflag.String("tokend", cfg.TokendURL, "token service base URL")
		list    = pflag.Bool("list", false, "list rooms and exit")
	)
	pflag.Parse()

	api := client.New(*tokend)

	if *list {
		rooms, err := api.Rooms(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to list rooms")
			os.Exit(1)
		}
		for _, r := range rooms {
			fmt.Printf("%s\t%d viewers\n", r.Name, r.ViewerCount)
		}
		return
	}

	if *room == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "please provide both --room and --name")
		os.Exit(1)
	}
	if err := domain.ValidateName(*name); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	role, err := domain.ParseRole(*roleStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Join is the only time-bounded user-observable action: token
	// fetch plus connect. Failure surfaces once; no automatic retry.
	joinCtx, joinCancel := context.WithTimeout(ctx, joinTimeout)
	defer joinCancel()

	tok, err := api.Token(joinCtx, *room, *name, role)
	if err != nil {
		log.Error().Err(err).Msg("failed to join room")
		os.Exit(1)
	}

	sess := media.NewSession()
	if err := sess.Connect(joinCtx, cfg.SFUWSURL, tok); err != nil {
		log.Error().Err(err).Msg("failed to connect")
		os.Exit(1)
	}
	defer sess.Disconnect()

	loop := session.NewLoop(sess, cfg.PageSize)

	if role == domain.RoleCamera {
		loop.AttachLocalMedia(ctx, *name, acquireLocalTracks)
	}

	go render(ctx, loop.Snapshots())

	log.Info().Str("room", *room).Str("name", *name).Str("role", string(role)).Msg("joined")
	loop.Run(ctx)
}

func acquireLocalTracks(_ context.Context) ([]media.LocalTrack, error) {
	video, err := media.NewCameraTrack()
	if err != nil {
		return nil, err
	}
	audio, err := media.NewMicrophoneTrack()
	if err != nil {
		return nil, err
	}
	return []media.LocalTrack{video, audio}, nil
}

func render(ctx context.Context, snaps <-chan session.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snaps:
			line := fmt.Sprintf("page %d/%d", snap.Page+1, snap.MaxPage+1)
			for _, tile := range snap.Visible {
				badge := ""
				if tile.AudioMuted {
					badge += " muted"
				}
				if tile.VideoMuted {
					badge += " video-off"
				}
				line += fmt.Sprintf(" | %s%s", tile.DisplayName, badge)
			}
			if snap.Focused != "" {
				line += fmt.Sprintf(" [focus: %s]", snap.Focused)
			}
			if len(snap.Roster) > 0 {
				line += fmt.Sprintf(" (%d in room)", len(snap.Roster))
			}
			fmt.Println(line)
			if !snap.Connected {
				return
			}
		}
	}
}
