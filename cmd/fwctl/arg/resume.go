package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var resumeCmd = &cobra.Command{
	Use:     "resume [session-id]",
	Aliases: []string{"r"},
	Short:   "Resume a paused pomodoro",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			id, err := sessionID(ctx, c, args)
			if err != nil {
				return err
			}
			snap, err := c.Resume(ctx, id)
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
