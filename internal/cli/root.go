package cli

import (
	"github.com/spf13/cobra"
)

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "venuedash",
		Short:         "Venue availability dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewBlocksCmd())
	cmd.AddCommand(NewFixturesCmd())
	return cmd
}
