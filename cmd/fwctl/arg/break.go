package arg

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var breakCmd = &cobra.Command{
	Use:   "break <session-id> <minutes>",
	Short: "Record the break taken after a completed pomodoro",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid minutes %q: %w", args[1], err)
		}
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			snap, err := c.RecordBreak(ctx, args[0], minutes)
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(breakCmd)
}
