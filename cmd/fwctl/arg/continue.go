package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var continueCmd = &cobra.Command{
	Use:   "continue <session-id>",
	Short: "Start a new session like an ended one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			snap, err := c.Continue(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(continueCmd)
}
