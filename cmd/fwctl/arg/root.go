package arg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/ipc"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

const appName = "focuswarden"

var (
	busName     string
	callTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "fwctl",
	Short: "fwctl is the command line tool for FocusWarden",
	Long: `fwctl talks to the FocusWarden daemon over D-Bus.
Start, pause and end focus sessions, or run the interactive timer.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&busName, "bus", config.BusSystem, "bus the daemon listens on (system or session)")
	rootCmd.PersistentFlags().DurationVar(&callTimeout, "timeout", 10*time.Second, "timeout for each daemon call")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withClient dials the daemon and runs fn under the call timeout.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *ipc.Client) error) error {
	c, err := ipc.Dial(busName)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()
	return fn(ctx, c)
}

// sessionID returns args[0], or the caller's active session when no id was
// given.
func sessionID(ctx context.Context, c *ipc.Client, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	snap, err := c.Active(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return "", errors.New("no active session; pass a session id")
		}
		return "", err
	}
	return snap.ID, nil
}
