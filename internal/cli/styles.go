// Package cli holds coin's terminal presentation: lipgloss styles, tables,
// prompts and progress output.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// Palette.
var (
	gold  = lipgloss.Color("#F4B942")
	teal  = lipgloss.Color("#4ECDC4")
	amber = lipgloss.Color("#FFE66D")
	coral = lipgloss.Color("#FF6B6B")
	mint  = lipgloss.Color("#95E1D3")
	slate = lipgloss.Color("#666666")
	frame = lipgloss.Color("#333333")
)

// Styles shared by the commands.
var (
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(teal)
	WarningStyle = lipgloss.NewStyle().Foreground(amber)
	ErrorStyle   = lipgloss.NewStyle().Foreground(coral)
	InfoStyle    = lipgloss.NewStyle().Foreground(mint)
	SubtleStyle  = lipgloss.NewStyle().Foreground(slate)

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(gold)
	promptStyle = titleStyle
	headerStyle = titleStyle.Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(frame).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	CoinIcon    = "🪙"
	ChartIcon   = "📊"
	RobotIcon   = "🤖"
)

func iconLine(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

func FormatSuccess(message string) string { return iconLine(SuccessStyle, SuccessIcon, message) }
func FormatError(message string) string   { return iconLine(ErrorStyle, ErrorIcon, message) }
func FormatWarning(message string) string { return iconLine(WarningStyle, WarningIcon, message) }
func FormatInfo(message string) string    { return iconLine(InfoStyle, InfoIcon, message) }

// FormatTitle renders a section heading followed by a blank line.
func FormatTitle(title string) string {
	return titleStyle.MarginBottom(1).Render(CoinIcon + " " + title)
}

func FormatPrompt(prompt string) string {
	return promptStyle.Render(prompt + " → ")
}

// FormatMoney renders an amount as dollars with two decimals.
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatSigned renders a balance, red when negative.
func FormatSigned(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return ErrorStyle.Render("-" + FormatMoney(amount.Neg()))
	}
	return SuccessStyle.Render(FormatMoney(amount))
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), content))
}

// RenderTable renders rows under headers with a rounded border.
func RenderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
