package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

var (
	SafeColor     = lipgloss.Color("#10B981") // Green
	WarningColor  = lipgloss.Color("#F59E0B") // Amber
	CriticalColor = lipgloss.Color("#F87171") // Red
	PendingColor  = lipgloss.Color("#60A5FA") // Blue
	MutedColor    = lipgloss.Color("#9CA3AF") // Gray
	TitleColor    = lipgloss.Color("#A78BFA") // Purple

	Safe     = lipgloss.NewStyle().Foreground(SafeColor)
	Warning  = lipgloss.NewStyle().Foreground(WarningColor)
	Critical = lipgloss.NewStyle().Foreground(CriticalColor).Bold(true)
	Pending  = lipgloss.NewStyle().Foreground(PendingColor).Bold(true)
	Muted    = lipgloss.NewStyle().Foreground(MutedColor)
	Plain    = lipgloss.NewStyle()

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TitleColor)

	Header = lipgloss.NewStyle().
		Bold(true).
		Underline(true)
)

// TierStyle returns the colour used for a severity tier
func TierStyle(tier entities.SeverityTier) lipgloss.Style {
	switch tier {
	case entities.TierCritical:
		return Critical
	case entities.TierWarning:
		return Warning
	default:
		return Safe
	}
}

// StatusStyle returns the colour used for an order status
func StatusStyle(status string) lipgloss.Style {
	switch entities.OrderStatus(status) {
	case entities.StatusPendingApproval:
		return Pending
	case entities.StatusOrdered:
		return Warning
	case entities.StatusDelivered:
		return Safe
	default:
		return Muted
	}
}

// cell pads s to width before styling so ANSI sequences do not break
// column alignment.
func cell(s string, width int, style lipgloss.Style) string {
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return style.Render(s)
}
