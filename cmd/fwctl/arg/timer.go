package arg

import (
	"context"
	"errors"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/ipc"
	"github.com/SoarinFerret/FocusWarden/internal/notify"
	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
	"github.com/SoarinFerret/FocusWarden/internal/tui"
)

var timerStart bool

var timerCmd = &cobra.Command{
	Use:   "timer [session-id]",
	Short: "Run the interactive timer for a session",
	Long: `Run the interactive timer. Without an id it attaches to the active
session; with --start it begins a new one from the start flags and preferences.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.LoadPrefs(appName)
		if err != nil {
			return err
		}

		c, err := ipc.Dial(busName)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		snap, err := timerSession(ctx, c, cmd, args, prefs)
		if err != nil {
			return err
		}

		notifier, closeNotifier := notifierFor(prefs)
		defer closeNotifier()

		e := engine.New(c, notifier)
		e.Attach(snap)

		// the screen owns the terminal while it runs
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)

		_, err = tea.NewProgram(tui.New(ctx, e, c)).Run()
		cancel()
		e.Wait()
		return err
	},
}

func timerSession(ctx context.Context, c *ipc.Client, cmd *cobra.Command, args []string, prefs config.Prefs) (service.Snapshot, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	switch {
	case timerStart:
		return c.Start(callCtx, startRequest(cmd, prefs))
	case len(args) > 0:
		return c.Get(callCtx, args[0])
	}
	snap, err := c.Active(callCtx)
	if errors.Is(err, session.ErrNotFound) {
		return snap, errors.New("no active session; use --start to begin one")
	}
	return snap, err
}

func notifierFor(prefs config.Prefs) (engine.Notifier, func()) {
	var n notify.Multi
	closer := func() {}
	if prefs.Bell {
		n = append(n, notify.Bell{W: os.Stdout})
	}
	if prefs.DesktopNotify {
		d, err := notify.NewDesktop("FocusWarden")
		if err != nil {
			log.Printf("Desktop notifications disabled: %v", err)
		} else {
			n = append(n, d)
			closer = func() { d.Close() }
		}
	}
	return n, closer
}

func init() {
	timerCmd.Flags().BoolVar(&timerStart, "start", false, "start a new session first")
	timerCmd.Flags().StringVarP(&startFlags.strategy, "strategy", "s", "", "pomodoro, flowtime or free_session")
	timerCmd.Flags().StringVarP(&startFlags.goal, "goal", "g", "", "what this session is for")
	timerCmd.Flags().IntVarP(&startFlags.target, "target", "t", 0, "pomodoro target in minutes")
	timerCmd.Flags().IntVar(&startFlags.ratio, "ratio", 0, "flowtime break ratio")
	rootCmd.AddCommand(timerCmd)
}
