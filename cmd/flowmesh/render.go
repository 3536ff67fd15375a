package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/flowmesh-ai/flowmesh/core"
	"github.com/flowmesh-ai/flowmesh/engine"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	agentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// renderEvents streams the execution trace to w until the sink closes.
func renderEvents(w io.Writer, events <-chan core.Event) {
	for ev := range events {
		switch ev.Type {
		case core.EventRunStarted:
			fmt.Fprintf(w, "%s %s\n", dimStyle.Render("run started"), ev.Detail)
		case core.EventRoundStarted:
			fmt.Fprintf(w, "%s %d\n", dimStyle.Render("round"), ev.Round)
		case core.EventAgentInvoked:
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("->"), agentStyle.Render(ev.Agent))
		case core.EventAgentCompleted:
			fmt.Fprintf(w, "  %s %s\n", okStyle.Render("ok"), agentStyle.Render(ev.Agent))
		case core.EventAgentFailed:
			fmt.Fprintf(w, "  %s %s: %s\n", failStyle.Render("fail"), agentStyle.Render(ev.Agent), ev.Error)
		case core.EventDecisionMade:
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("decision"), ev.Detail)
		case core.EventAggregationPerformed:
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("aggregate"), ev.Detail)
		case core.EventPlanProposed:
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("plan"), ev.Detail)
		case core.EventPlanReviewed:
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("review"), ev.Detail)
		case core.EventPlanReset:
			fmt.Fprintf(w, "  %s %s\n", failStyle.Render("plan reset"), ev.Detail)
		case core.EventRunTerminated:
			if ev.Error != "" {
				fmt.Fprintf(w, "%s %s\n", failStyle.Render("run failed:"), ev.Error)
			} else {
				fmt.Fprintf(w, "%s\n", okStyle.Render("run completed"))
			}
		}
	}
}

// printResult renders the terminal outcome and the per-agent result trail.
func printResult(w io.Writer, result *engine.Result) {
	fmt.Fprintf(w, "\n%s\n%s\n", titleStyle.Render("Result"), result.Output)
	if len(result.Results) > 1 {
		fmt.Fprintf(w, "\n%s\n", titleStyle.Render("Trail"))
		for _, r := range result.Results {
			fmt.Fprintf(w, "%s %s\n", agentStyle.Render(r.Agent+":"), r.Output)
		}
	}
}
