package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"CoinPulse/internal/domain/models"
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true)
	HelpStyle    = lipgloss.NewStyle().Faint(true)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	UpStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	DownStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	NeutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// FormatState renders a signal state with an arrow.
func FormatState(s models.SignalState) string {
	switch s {
	case models.StateUp:
		return UpStyle.Render("▲ UP")
	case models.StateDown:
		return DownStyle.Render("▼ DOWN")
	default:
		return NeutralStyle.Render("• NEUTRAL")
	}
}

// FormatClassification renders a market classification.
func FormatClassification(c models.Classification) string {
	switch c {
	case models.ClassBull:
		return UpStyle.Render(string(c))
	case models.ClassBear:
		return DownStyle.Render(string(c))
	default:
		return NeutralStyle.Render(string(c))
	}
}

// FormatSignalLine renders one row of the aggregate table.
func FormatSignalLine(sig models.SymbolSignal) string {
	if !sig.Available {
		return fmt.Sprintf("%-6s %s %s", sig.Symbol, ErrorStyle.Render("unavailable"), HelpStyle.Render(sig.Error))
	}
	return fmt.Sprintf("%-6s %-20s %8.3f  w=%.2f  %s",
		sig.Symbol, FormatState(sig.Result.State), sig.Result.Score, sig.Weight, HelpStyle.Render(sig.Result.Explanation))
}
