package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/baaaaaaaka/termchat/internal/printer"
	"github.com/baaaaaaaka/termchat/internal/scrollback"
)

const fallbackWidth = 80

var terminalWidth = func() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 0
	}
	return w
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "render [transcript]",
		Short: "Print the retained messages of a transcript and exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runRender(cmd, root, path, width)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Output width in columns (default: terminal width)")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, path string, width int) error {
	st, err := loadSettings(root)
	if err != nil {
		return err
	}
	defer st.close()

	path, err = resolveTranscriptPath(path)
	if err != nil {
		return err
	}

	if width == 0 {
		width = terminalWidth()
	}
	if width == 0 {
		width = fallbackWidth
	}
	if width < scrollback.MinWidth {
		return fmt.Errorf("width %d is too narrow (minimum %d)", width, scrollback.MinWidth)
	}

	buf, _, err := loadBuffer(st, path, width)
	if err != nil {
		return err
	}
	return printer.New(cmd.OutOrStdout(), st.palette).Write(buf.Messages())
}
