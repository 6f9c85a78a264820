package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// runForm is swapped in tests.
var runForm = func(f *huh.Form) error { return f.Run() }

func tallyHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func rejectReasonForm(timesheetID string, reason *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Rejection reason").
				Description("Sent back to the owner of " + timesheetID).
				Value(reason).
				Validate(validateRequired),
		),
	).WithTheme(tallyHuhTheme()).WithShowHelp(false)
}

// manualEntry holds the fields of "log add" that may be prompted for.
type manualEntry struct {
	Task        string
	Date        string
	Start       string
	End         string
	Description string
}

func (e manualEntry) complete() bool {
	return e.Task != "" && e.Start != "" && e.End != ""
}

func manualEntryForm(e *manualEntry) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(&e.Task).Validate(validateRequired),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&e.Date).
				Validate(func(s string) error {
					if _, err := domain.ParseDate(s); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().Title("Start").Placeholder("09:00").Value(&e.Start).Validate(validateClock),
			huh.NewInput().Title("End").Placeholder("17:00").Value(&e.End).Validate(validateClock),
			huh.NewInput().Title("Description (optional)").Value(&e.Description),
		),
	).WithTheme(tallyHuhTheme()).WithShowHelp(false)
}

// prompt runs f and maps a user abort onto a plain error.
func prompt(f *huh.Form) error {
	if err := runForm(f); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("cancelled")
		}
		return err
	}
	return nil
}
