package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette: https://catppuccin.com/palette
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorPeach    lipgloss.Color = "#fab387"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorRed      lipgloss.Color = "#f38ba8"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
)

const (
	colorBrand = colorPink
	colorFocus = colorLavender
	colorMoney = colorGreen
	colorInfo  = colorTeal
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	tabStyle      = lipgloss.NewStyle().Foreground(colorSubtext0).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(colorFocus).Underline(true).Padding(0, 1)
	rowStyle      = lipgloss.NewStyle().Foreground(colorText)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorFocus)
	countStyle    = lipgloss.NewStyle().Foreground(colorPeach)
	moneyStyle    = lipgloss.NewStyle().Foreground(colorMoney)
	dimStyle      = lipgloss.NewStyle().Foreground(colorOverlay0)
	infoStyle     = lipgloss.NewStyle().Foreground(colorInfo)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface1).Padding(0, 1)
	detailHeading = lipgloss.NewStyle().Bold(true).Foreground(colorText)
)
