package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			snaps, err := c.Today(ctx)
			if err != nil {
				return err
			}
			fmt.Print(renderToday(snaps))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
}
