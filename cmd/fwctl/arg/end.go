package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var endActual int

var endCmd = &cobra.Command{
	Use:   "end [session-id]",
	Short: "Complete a session",
	Long: `Complete a session. Pomodoros need --actual, the minutes worked; for
flowtime and free sessions the daemon's own count is used when it is omitted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actual := actualFlag(cmd, endActual)
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			id, err := sessionID(ctx, c, args)
			if err != nil {
				return err
			}
			snap, err := c.End(ctx, id, actual)
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

// actualFlag is nil unless --actual was given.
func actualFlag(cmd *cobra.Command, v int) *int {
	if !cmd.Flags().Changed("actual") {
		return nil
	}
	return &v
}

func init() {
	endCmd.Flags().IntVarP(&endActual, "actual", "a", 0, "minutes actually worked")
	rootCmd.AddCommand(endCmd)
}
