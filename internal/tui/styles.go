package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/groundcheck/groundcheck/internal/taxonomy"
)

type theme struct {
	root        lipgloss.Style
	header      lipgloss.Style
	appName     lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	footer      lipgloss.Style
	help        lipgloss.Style
	notice      lipgloss.Style
	errNotice   lipgloss.Style

	answer   lipgloss.Style
	citation lipgloss.Style
	muted    lipgloss.Style

	safe    lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
	neutral lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("39")
	green := lipgloss.Color("42")
	yellow := lipgloss.Color("214")
	red := lipgloss.Color("196")
	gray := lipgloss.Color("245")
	text := lipgloss.Color("252")

	return theme{
		root: lipgloss.NewStyle().Padding(0, 1),
		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		appName: lipgloss.NewStyle().Foreground(accent).Bold(true),
		tabActive: lipgloss.NewStyle().
			Background(accent).
			Foreground(lipgloss.Color("231")).
			Bold(true).
			Padding(0, 1),
		tabInactive: lipgloss.NewStyle().
			Foreground(gray).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(gray).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(accent).Bold(true),
		footer: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(gray).
			Padding(0, 1),
		help:      lipgloss.NewStyle().Foreground(gray),
		notice:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		errNotice: lipgloss.NewStyle().Foreground(red).Bold(true),

		answer:   lipgloss.NewStyle().Foreground(text),
		citation: lipgloss.NewStyle().Foreground(gray).Italic(true),
		muted:    lipgloss.NewStyle().Foreground(gray),

		safe:    lipgloss.NewStyle().Foreground(green),
		warning: lipgloss.NewStyle().Foreground(yellow),
		danger:  lipgloss.NewStyle().Foreground(red),
		neutral: lipgloss.NewStyle().Foreground(gray),
	}
}

func (t theme) riskStyle(cat taxonomy.RiskCategory) lipgloss.Style {
	switch cat {
	case taxonomy.RiskCategorySafe:
		return t.safe
	case taxonomy.RiskCategoryWarning:
		return t.warning
	case taxonomy.RiskCategoryDanger:
		return t.danger
	default:
		return t.neutral
	}
}

func (t theme) bandStyle(band taxonomy.ScoreBand) lipgloss.Style {
	switch band {
	case taxonomy.BandGood:
		return t.safe
	case taxonomy.BandModerate:
		return t.warning
	case taxonomy.BandPoor:
		return t.danger
	default:
		return t.neutral
	}
}
