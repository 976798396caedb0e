package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/termchat/internal/config"
)

func newInitCmd(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := config.NewStore(root.configPath)
			if err != nil {
				return err
			}

			_, wrote, err := store.Init(force)
			if err != nil {
				return err
			}
			if wrote {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", store.Path())
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s (use --force to reset)\n", store.Path())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	return cmd
}
