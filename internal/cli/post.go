package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/baaaaaaaka/termchat/internal/transcript"
)

func newPostCmd(root *rootOptions) *cobra.Command {
	var author string
	var displayName string
	var role string
	var attach string

	cmd := &cobra.Command{
		Use:   "post <transcript> [text...]",
		Short: "Append a message to a transcript (text - reads stdin)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			if text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = strings.TrimRight(string(b), "\n")
			}
			msg := transcript.Message{
				Author: &transcript.Author{Name: author, DisplayName: displayName, TopRole: role},
				Body:   text,
			}
			return runPost(cmd, root, args[0], msg, attach)
		},
	}
	cmd.Flags().StringVar(&author, "author", os.Getenv("USER"), "Author user name")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Author display name")
	cmd.Flags().StringVar(&role, "role", "", "Author top role (a palette color colors the name)")
	cmd.Flags().StringVar(&attach, "attach", "", "Attach a file (absolute, relative, or under your home dir)")
	return cmd
}

func runPost(cmd *cobra.Command, root *rootOptions, path string, msg transcript.Message, attach string) error {
	st, err := loadSettings(root)
	if err != nil {
		return err
	}
	defer st.close()

	if attach != "" {
		p, err := transcript.ResolveAttachment(attach)
		if err != nil {
			if errors.Is(err, transcript.ErrBadAttachment) {
				printError(cmd.ErrOrStderr(), "Bad filepath")
			}
			st.log.Warn("attachment rejected", zap.String("path", attach), zap.Error(err))
			return err
		}
		msg.Attachment = p
	}
	if strings.TrimSpace(msg.Body) == "" && msg.Attachment == "" {
		return errors.New("nothing to post: give message text or --attach")
	}

	saved, err := transcript.Append(path, msg)
	if err != nil {
		return err
	}
	st.log.Debug("posted", zap.String("id", saved.ID), zap.String("path", path))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
	return nil
}

// printError writes "Error: msg" in bold red when w is a color terminal.
func printError(w io.Writer, msg string) {
	out := termenv.NewOutput(w)
	_, _ = fmt.Fprintln(w, out.String("Error: "+msg).Bold().Foreground(out.Color("1")))
}
