package arg

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

var prefsFlags struct {
	strategy      string
	goal          string
	target        int
	ratio         int
	bell          bool
	desktopNotify bool
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show the timer preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.LoadPrefs(appName)
		if err != nil {
			return err
		}
		fmt.Print(renderPrefs(prefs))
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the timer preferences used by start and timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := config.LoadPrefs(appName)
		if err != nil {
			return err
		}
		prefs, err = applyPrefs(cmd, prefs)
		if err != nil {
			return err
		}
		if err := config.SavePrefs(appName, prefs); err != nil {
			return err
		}
		fmt.Print(renderPrefs(prefs))
		return nil
	},
}

// applyPrefs copies the flags given on cmd over prefs.
func applyPrefs(cmd *cobra.Command, prefs config.Prefs) (config.Prefs, error) {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		switch session.Strategy(prefsFlags.strategy) {
		case session.StrategyPomodoro, session.StrategyFlowtime, session.StrategyFree:
			prefs.Strategy = prefsFlags.strategy
		default:
			return prefs, fmt.Errorf("unknown strategy %q", prefsFlags.strategy)
		}
	}
	if flags.Changed("goal") {
		prefs.Goal = prefsFlags.goal
	}
	if flags.Changed("target") {
		if prefsFlags.target < 1 {
			return prefs, fmt.Errorf("target must be at least 1 minute")
		}
		prefs.TargetMinutes = prefsFlags.target
	}
	if flags.Changed("ratio") {
		if prefsFlags.ratio < 1 {
			return prefs, fmt.Errorf("ratio must be at least 1")
		}
		prefs.BreakRatio = prefsFlags.ratio
	}
	if flags.Changed("bell") {
		prefs.Bell = prefsFlags.bell
	}
	if flags.Changed("desktop-notify") {
		prefs.DesktopNotify = prefsFlags.desktopNotify
	}
	return prefs, nil
}

func renderPrefs(prefs config.Prefs) string {
	onOff := func(v bool) string {
		if v {
			return color.GreenString("on")
		}
		return color.HiBlackString("off")
	}
	goal := prefs.Goal
	if goal == "" {
		goal = color.HiBlackString("none")
	}
	return fmt.Sprintf("%s\n  Strategy: %s\n  Target:   %d min\n  Ratio:    %d\n  Goal:     %s\n  Bell:     %s\n  Desktop:  %s\n",
		color.CyanString("Timer preferences"),
		prefs.Strategy, prefs.TargetMinutes, prefs.BreakRatio, goal,
		onOff(prefs.Bell), onOff(prefs.DesktopNotify))
}

func init() {
	f := prefsSetCmd.Flags()
	f.StringVarP(&prefsFlags.strategy, "strategy", "s", "", "pomodoro, flowtime or free_session")
	f.StringVarP(&prefsFlags.goal, "goal", "g", "", "default goal")
	f.IntVarP(&prefsFlags.target, "target", "t", 0, "pomodoro target in minutes")
	f.IntVar(&prefsFlags.ratio, "ratio", 0, "flowtime break ratio")
	f.BoolVar(&prefsFlags.bell, "bell", true, "ring the terminal bell when a break ends")
	f.BoolVar(&prefsFlags.desktopNotify, "desktop-notify", true, "post a desktop notification when a break ends")
	prefsCmd.AddCommand(prefsSetCmd)
	rootCmd.AddCommand(prefsCmd)
}
