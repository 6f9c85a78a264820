package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusPill returns a colored indicator for a timesheet status.
func StatusPill(status domain.TimesheetStatus) string {
	switch status {
	case domain.TimesheetDraft:
		return StyleBlue.Render("○ Draft")
	case domain.TimesheetSubmitted:
		return StyleYellow.Render("● Submitted")
	case domain.TimesheetApproved:
		return StyleGreen.Render("✔ Approved")
	case domain.TimesheetRejected:
		return StyleRed.Render("✖ Rejected")
	default:
		return StyleDim.Render(string(status))
	}
}

// SourceBadge labels how a time log was captured.
func SourceBadge(source domain.LogSource) string {
	if source == domain.SourceTimer {
		return StylePurple.Render("timer")
	}
	return StyleBlue.Render("manual")
}

// RoleBadge renders a role in its display form, e.g. "Team Leader".
func RoleBadge(role domain.Role) string {
	words := strings.Split(string(role), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return StylePurple.Render(strings.Join(words, " "))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
