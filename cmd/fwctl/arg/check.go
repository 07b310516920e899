package arg

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/ipc"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that FocusWarden is running and who it thinks you are",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			status, err := c.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Println("FocusWarden Status:", color.GreenString(status))

			user, err := c.Check(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Identified as:", user)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
