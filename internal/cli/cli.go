package cli

import (
	"github.com/spf13/cobra"
)

var (
	version = "v0.1.0"
	commit  = ""
	date    = ""
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
	noItalic   bool
}

func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "termchat [transcript]",
		Short:         "Show a chat transcript in a scrolling terminal view",
		SilenceErrors: false,
		SilenceUsage:  true,
		Version:       buildVersion(),
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = args
			return runDefaultView(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Override config file path (default: OS user config dir)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error or off")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Log file path (default: OS user cache dir)")
	cmd.PersistentFlags().BoolVar(&opts.noItalic, "no-italic", false, "Render emphasis as underline instead of italic")

	cmd.AddCommand(
		newInitCmd(opts),
		newViewCmd(opts),
		newRenderCmd(opts),
		newPostCmd(opts),
	)

	return cmd
}

func buildVersion() string {
	v := version
	if commit != "" {
		v += " (" + commit + ")"
	}
	if date != "" {
		v += " " + date
	}
	return v
}
