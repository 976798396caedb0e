package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baaaaaaaka/termchat/internal/scrollback"
	"github.com/baaaaaaaka/termchat/internal/transcript"
	"github.com/baaaaaaaka/termchat/internal/tui"
)

// initialWidth is only used until the viewer knows the screen size.
const initialWidth = 80

var runViewer = tui.Run

func newViewCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [transcript]",
		Short: "Show a transcript and follow new messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runView(cmd, root, path)
		},
	}
	return cmd
}

func runView(cmd *cobra.Command, root *rootOptions, path string) error {
	st, err := loadSettings(root)
	if err != nil {
		return err
	}
	defer st.close()

	path, err = resolveTranscriptPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}

	buf, offset, err := loadBuffer(st, path, initialWidth)
	if err != nil {
		return err
	}

	follower, err := transcript.NewFollower(transcript.FollowConfig{
		Path:     path,
		Offset:   offset,
		Debounce: st.cfg.FollowDebounce(),
		Logger:   st.log,
	})
	if err != nil {
		return err
	}
	feed, err := follower.Start()
	if err != nil {
		_ = follower.Stop()
		return err
	}
	defer func() { _ = follower.Stop() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st.log.Info("viewer started", zap.String("path", path), zap.Int("messages", buf.Len()))
	err = runViewer(ctx, tui.Options{
		Buffer:  buf,
		Palette: st.palette,
		Title:   filepath.Base(path),
		Version: version,
		Feed:    feed,
		Errors:  follower.Errors(),
		Logger:  st.log,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadBuffer reads the newest messages of path into a fresh buffer. The
// returned offset is where following should resume.
func loadBuffer(st *settings, path string, width int) (*scrollback.Buffer, int64, error) {
	capacity := st.cfg.EffectiveCapacity()
	res, err := transcript.Read(path, capacity)
	if err != nil {
		return nil, 0, err
	}
	if res.Skipped > 0 {
		st.log.Warn("skipped malformed transcript lines", zap.String("path", path), zap.Int("count", res.Skipped))
	}

	buf, err := scrollback.New(scrollback.Options{
		Capacity: capacity,
		Width:    width,
		Markup:   st.markup,
		Logger:   st.log,
	})
	if err != nil {
		return nil, 0, err
	}
	for _, m := range res.Messages {
		buf.Append(m)
	}
	return buf, res.Offset, nil
}
