package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runDefaultView(cmd *cobra.Command, root *rootOptions) error {
	all := cmd.Flags().Args()
	dash := cmd.Flags().ArgsLenAtDash()

	before := all
	after := []string{}
	if dash >= 0 {
		before = all[:dash]
		after = all[dash:]
	}

	if len(before) > 1 {
		return fmt.Errorf("unexpected args before -- (only transcript is allowed)")
	}
	if len(after) > 0 {
		return fmt.Errorf("unexpected args after -- (use `termchat post` to add messages)")
	}

	path := ""
	if len(before) == 1 {
		path = before[0]
	}

	return runView(cmd, root, path)
}
