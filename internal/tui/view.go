package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SoarinFerret/FocusWarden/internal/engine"
	"github.com/SoarinFerret/FocusWarden/internal/session"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	d := m.display
	if d.SessionID == "" {
		return boxStyle.Render(infoStyle.Render("No session attached")) + "\n"
	}

	var b strings.Builder
	title := strategyTitle(d.Strategy)
	if d.Goal != "" {
		title += " · " + d.Goal
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(clockLine(d))
	b.WriteString("\n")
	if d.TargetSeconds > 0 {
		b.WriteString(m.progress.ViewAs(d.Progress()))
		b.WriteString("\n")
	}

	if line := breakLine(d); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	case d.LastError != nil:
		b.WriteString(errorStyle.Render("will retry: " + d.LastError.Error()))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString(infoStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(helpLine(d)))
	return boxStyle.Render(b.String()) + "\n"
}

func strategyTitle(s session.Strategy) string {
	switch s {
	case session.StrategyPomodoro:
		return "Pomodoro"
	case session.StrategyFlowtime:
		return "Flowtime"
	case session.StrategyFree:
		return "Free session"
	}
	return string(s)
}

func clockLine(d engine.Display) string {
	switch d.Status {
	case session.StatusPaused:
		return pausedStyle.Render(engine.Clock(d.RemainingSeconds()) + "  paused")
	case session.StatusCompleted, session.StatusInterrupted:
		worked := "discarded"
		if !d.Discarded && d.ActualDuration != nil {
			worked = fmt.Sprintf("%d min worked", *d.ActualDuration)
		}
		return infoStyle.Render(string(d.Status) + ", " + worked)
	}
	if d.TargetSeconds > 0 {
		return clockStyle.Render(engine.Clock(d.RemainingSeconds()))
	}
	return clockStyle.Render(engine.Clock(d.ElapsedSeconds))
}

func breakLine(d engine.Display) string {
	switch {
	case d.OnBreak:
		return clockStyle.Render("Break " + engine.Clock(d.BreakRemaining))
	case d.Terminal() && d.BreakRemaining > 0:
		return infoStyle.Render(fmt.Sprintf("%d min break proposed", d.BreakMinutes))
	}
	return ""
}

func helpLine(d engine.Display) string {
	var keys []string
	switch {
	case d.Status == session.StatusRunning && d.Strategy == session.StrategyPomodoro:
		keys = append(keys, "p pause")
	case d.Status == session.StatusPaused:
		keys = append(keys, "r resume")
	}
	if !d.Terminal() {
		keys = append(keys, "c complete", "i interrupt")
	} else {
		if d.OnBreak {
			keys = append(keys, "s skip break")
		} else if d.BreakRemaining > 0 {
			keys = append(keys, "b break", "s skip break")
		}
		keys = append(keys, "n continue")
	}
	keys = append(keys, "q quit")
	return strings.Join(keys, " • ")
}
