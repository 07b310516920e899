package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var interruptActual int

var interruptCmd = &cobra.Command{
	Use:   "interrupt [session-id]",
	Short: "Abandon a session before it is done",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actual := actualFlag(cmd, interruptActual)
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			id, err := sessionID(ctx, c, args)
			if err != nil {
				return err
			}
			snap, err := c.Interrupt(ctx, id, actual)
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

func init() {
	interruptCmd.Flags().IntVarP(&interruptActual, "actual", "a", 0, "minutes actually worked")
	rootCmd.AddCommand(interruptCmd)
}
