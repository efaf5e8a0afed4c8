package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#f2f2f2"}
	colorHint    = lipgloss.AdaptiveColor{Light: "#707579", Dark: "#8d9399"}
	colorLink    = lipgloss.Color("#2481cc")
	colorError   = lipgloss.Color("#e53935")
	colorSuccess = lipgloss.Color("#31b545")
)

// Styles groups the lipgloss styles of every screen.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Hint     lipgloss.Style
	Error    lipgloss.Style
	Cursor   lipgloss.Style
	Button   lipgloss.Style
	Back     lipgloss.Style
	Modal    lipgloss.Style
	Popup    lipgloss.Style
	ToastOK  lipgloss.Style
	ToastErr lipgloss.Style
}

// DefaultStyles is the plain terminal theme.
func DefaultStyles() Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(colorText).MarginBottom(1),
		Label:  lipgloss.NewStyle().Foreground(colorHint),
		Value:  lipgloss.NewStyle().Foreground(colorText),
		Hint:   lipgloss.NewStyle().Foreground(colorHint).Italic(true),
		Error:  lipgloss.NewStyle().Foreground(colorError),
		Cursor: lipgloss.NewStyle().Foreground(colorLink).Bold(true),
		Button: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(colorLink).
			Padding(0, 2),
		Back: lipgloss.NewStyle().Foreground(colorLink),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLink).
			Padding(0, 1),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorError).
			Padding(0, 1),
		ToastOK:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(colorSuccess).Padding(0, 1),
		ToastErr: lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(colorError).Padding(0, 1),
	}
}
