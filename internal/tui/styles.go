package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcin-skalski/patchwatch/internal/patch"
)

var (
	// Change colors
	colorBuff  = lipgloss.Color("46")  // green
	colorNerf  = lipgloss.Color("196") // red
	colorNew   = lipgloss.Color("135") // purple
	colorFix   = lipgloss.Color("33")  // blue
	colorOther = lipgloss.Color("252")

	// Impact colors
	colorImpactHigh   = lipgloss.Color("196")
	colorImpactMedium = lipgloss.Color("214") // orange
	colorImpactLow    = lipgloss.Color("46")

	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingLeft(1).
			PaddingRight(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1).
			MarginBottom(0)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			PaddingLeft(1).
			PaddingRight(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("237")).
			PaddingLeft(1).
			PaddingRight(1)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedItemStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Background(lipgloss.Color("237"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func changeColor(t patch.ChangeType) lipgloss.Color {
	switch t {
	case patch.Buff:
		return colorBuff
	case patch.Nerf:
		return colorNerf
	case patch.New:
		return colorNew
	case patch.Fix:
		return colorFix
	default:
		return colorOther
	}
}

func impactColor(l patch.ImpactLabel) lipgloss.Color {
	switch l {
	case patch.ImpactHigh:
		return colorImpactHigh
	case patch.ImpactMedium:
		return colorImpactMedium
	case patch.ImpactLow:
		return colorImpactLow
	default:
		return colorOther
	}
}
