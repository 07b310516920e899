package arg

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

func statusString(s session.Status) string {
	switch s {
	case session.StatusRunning:
		return color.GreenString(string(s))
	case session.StatusPaused:
		return color.YellowString(string(s))
	case session.StatusInterrupted:
		return color.RedString(string(s))
	}
	return color.CyanString(string(s))
}

// renderSnapshot formats one session for the terminal.
func renderSnapshot(snap service.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s\n", color.CyanString(string(snap.Type)), snap.ID, statusString(snap.Status))
	if snap.Discarded {
		sb.WriteString(color.HiBlackString("  discarded: too short to keep\n"))
		return sb.String()
	}
	if snap.CustomGoal != "" {
		fmt.Fprintf(&sb, "  Goal:     %s\n", snap.CustomGoal)
	}
	if snap.StartedAt != nil {
		fmt.Fprintf(&sb, "  Started:  %s\n", snap.StartedAt.Local().Format(time.Kitchen))
	}
	if snap.TargetDuration != nil {
		fmt.Fprintf(&sb, "  Target:   %d min\n", *snap.TargetDuration)
	}
	if snap.ActualDuration != nil {
		fmt.Fprintf(&sb, "  Worked:   %d min\n", *snap.ActualDuration)
	} else {
		fmt.Fprintf(&sb, "  Worked:   %s\n", (time.Duration(snap.WorkedSeconds) * time.Second).String())
	}
	if snap.PauseDuration != nil && *snap.PauseDuration > 0 {
		pauses := 0
		if snap.PauseCount != nil {
			pauses = *snap.PauseCount
		}
		fmt.Fprintf(&sb, "  Paused:   %d min over %d pause(s)\n", *snap.PauseDuration, pauses)
	}
	switch {
	case snap.BreakDuration != nil:
		taken := ""
		if snap.BreakTaken != nil {
			taken = color.HiBlackString(" (%d min taken)", *snap.BreakTaken)
		}
		fmt.Fprintf(&sb, "  Break:    %s%s\n", color.GreenString("%d min", *snap.BreakDuration), taken)
	case snap.SuggestedBreakDuration != nil:
		fmt.Fprintf(&sb, "  Break:    %s suggested\n", color.GreenString("%d min", *snap.SuggestedBreakDuration))
	}
	return sb.String()
}

// renderToday lists the day's sessions with a completed Pomodoro count.
func renderToday(snaps []service.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(color.CyanString("Today\n"))
	if len(snaps) == 0 {
		sb.WriteString(color.HiBlackString("  no sessions yet\n"))
		return sb.String()
	}
	pomodoros, minutes := 0, 0
	for _, snap := range snaps {
		marker := color.GreenString("✓")
		switch snap.Status {
		case session.StatusInterrupted:
			marker = color.RedString("✗")
		case session.StatusRunning, session.StatusPaused:
			marker = color.YellowString("…")
		}
		worked := "-"
		if snap.ActualDuration != nil {
			worked = fmt.Sprintf("%d min", *snap.ActualDuration)
			minutes += *snap.ActualDuration
		}
		start := "--:--"
		if snap.StartedAt != nil {
			start = snap.StartedAt.Local().Format("15:04")
		}
		fmt.Fprintf(&sb, "  %s %s %-12s %s\n", marker, color.HiBlackString(start), snap.Type, worked)
		if snap.Type == session.StrategyPomodoro && snap.Status == session.StatusCompleted {
			pomodoros++
		}
	}
	fmt.Fprintf(&sb, "  %d pomodoro(s) completed, %d min recorded\n", pomodoros, minutes)
	return sb.String()
}
