package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var pauseCmd = &cobra.Command{
	Use:     "pause [session-id]",
	Aliases: []string{"p"},
	Short:   "Pause a running pomodoro",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			id, err := sessionID(ctx, c, args)
			if err != nil {
				return err
			}
			snap, err := c.Pause(ctx, id)
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
