package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
	"github.com/SoarinFerret/FocusWarden/internal/service"
)

var showCmd = &cobra.Command{
	Use:     "show [session-id]",
	Aliases: []string{"status"},
	Short:   "Show a session, the active one by default",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			var snap service.Snapshot
			var err error
			if len(args) > 0 {
				snap, err = c.Get(ctx, args[0])
			} else {
				snap, err = c.Active(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
