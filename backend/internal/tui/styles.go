package tui

import (
	"taskify/backend/internal/components"
	"taskify/backend/internal/dashboard"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8FAFC")).Background(lipgloss.Color("#0F172A")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Padding(0, 1)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	doneStyle      = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("#94A3B8"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EA580C")).Bold(true)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7C3AED")).Padding(0, 1)
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true)
)

var toneStyles = map[components.Tone]lipgloss.Style{
	components.ToneNeutral: lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")),
	components.ToneMedium:  lipgloss.NewStyle().Foreground(lipgloss.Color("#4F46E5")),
	components.ToneWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")).Bold(true),
}

func renderBadge(b components.Badge) string {
	return toneStyles[b.Tone].Render(b.String())
}

func renderNotification(n dashboard.Notification) string {
	text := n.Title + ": " + n.Description
	if n.Severity == dashboard.SeverityDestructive {
		return errorStyle.Render(text)
	}
	return infoStyle.Render(text)
}
