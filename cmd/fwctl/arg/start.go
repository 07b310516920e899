package arg

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/ipc"
	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

var startFlags struct {
	strategy string
	goal     string
	task     string
	event    string
	target   int
	ratio    int
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	Long: `Start a pomodoro, flowtime or free_session session. Flags left unset
fall back to the timer preferences file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.LoadPrefs(appName)
		if err != nil {
			return err
		}
		req := startRequest(cmd, prefs)
		return withClient(cmd, func(ctx context.Context, c *ipc.Client) error {
			snap, err := c.Start(ctx, req)
			if err != nil {
				return err
			}
			fmt.Print(renderSnapshot(snap))
			return nil
		})
	},
}

// startRequest merges explicit flags over prefs.
func startRequest(cmd *cobra.Command, prefs config.Prefs) service.StartRequest {
	req := service.StartRequest{
		Strategy:   session.Strategy(prefs.Strategy),
		CustomGoal: prefs.Goal,
		TaskRef:    startFlags.task,
		EventRef:   startFlags.event,
	}
	if cmd.Flags().Changed("strategy") {
		req.Strategy = session.Strategy(startFlags.strategy)
	}
	if cmd.Flags().Changed("goal") {
		req.CustomGoal = startFlags.goal
	}

	switch req.Strategy {
	case session.StrategyPomodoro:
		target := prefs.TargetMinutes
		if cmd.Flags().Changed("target") {
			target = startFlags.target
		}
		req.TargetDuration = &target
	case session.StrategyFlowtime:
		ratio := prefs.BreakRatio
		if cmd.Flags().Changed("ratio") {
			ratio = startFlags.ratio
		}
		req.BreakRatio = &ratio
	}
	return req
}

func init() {
	startCmd.Flags().StringVarP(&startFlags.strategy, "strategy", "s", "", "pomodoro, flowtime or free_session")
	startCmd.Flags().StringVarP(&startFlags.goal, "goal", "g", "", "what this session is for")
	startCmd.Flags().StringVar(&startFlags.task, "task", "", "task reference")
	startCmd.Flags().StringVar(&startFlags.event, "event", "", "calendar event reference")
	startCmd.Flags().IntVarP(&startFlags.target, "target", "t", 0, "pomodoro target in minutes")
	startCmd.Flags().IntVar(&startFlags.ratio, "ratio", 0, "flowtime break ratio")
	rootCmd.AddCommand(startCmd)
}
