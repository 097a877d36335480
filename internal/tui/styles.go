package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title    lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Metric   lipgloss.Style
	Error    lipgloss.Style
	Column   lipgloss.Style
	ColumnOn lipgloss.Style
	Cell     lipgloss.Style
}

func defaultStyles() styles {
	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Padding(0, 1).
		Width(36)
	return styles{
		Title:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3B5D7D")).Bold(true),
		Tab:      lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Padding(0, 1),
		TabOn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#476f95")).Padding(0, 1),
		Header:   lipgloss.NewStyle().Foreground(lipgloss.Color("#476f95")).Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")),
		Metric:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CD853F")).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F56")).Bold(true),
		Column:   column,
		ColumnOn: column.BorderForeground(lipgloss.Color("#476f95")),
		Cell:     lipgloss.NewStyle().Width(12).Align(lipgloss.Center),
	}
}
