package cli

import (
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type watchAction int

const (
	watchNone watchAction = iota
	watchStop
	watchDiscard
)

type tickMsg time.Time

type watchKeys struct {
	Stop    key.Binding
	Discard key.Binding
	Quit    key.Binding
}

func (k watchKeys) ShortHelp() []key.Binding  { return []key.Binding{k.Stop, k.Discard, k.Quit} }
func (k watchKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultWatchKeys = watchKeys{
	Stop:    key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "stop & log")),
	Discard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "discard")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "leave running")),
}

// watchModel displays elapsed time for a session. Elapsed is recomputed from
// the start time on every tick and never accumulated.
type watchModel struct {
	timer      *domain.ActiveTimer
	now        func() time.Time
	maxSession time.Duration
	elapsed    time.Duration
	action     watchAction
	keys       watchKeys
	help       help.Model
	done       bool
}

func newWatchModel(t *domain.ActiveTimer, now func() time.Time, maxSession time.Duration) watchModel {
	return watchModel{
		timer:      t,
		now:        now,
		maxSession: maxSession,
		elapsed:    t.Elapsed(now()),
		keys:       defaultWatchKeys,
		help:       help.New(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = m.timer.Elapsed(m.now())
		return m, tick()
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			m.action = watchStop
		case key.Matches(msg, m.keys.Discard):
			m.action = watchDiscard
		case key.Matches(msg, m.keys.Quit):
			m.action = watchNone
		default:
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.StyleGreen.Render("●") + " Tracking " + formatter.Bold(m.timer.TaskID))
	if m.timer.ProjectID != "" {
		b.WriteString(formatter.Dim(" (" + m.timer.ProjectID + ")"))
	}
	b.WriteString("\n\n  ")
	b.WriteString(formatter.StyleHeader.Render(formatter.FormatClock(m.elapsed)))
	if m.maxSession > 0 && m.elapsed > m.maxSession {
		b.WriteString("  " + formatter.StyleRed.Render("expired, discard and restart"))
	}
	b.WriteString("\n  " + formatter.Dim("since "+m.timer.StartedAt.Format("15:04:05")))
	b.WriteString("\n\n" + m.help.View(m.keys) + "\n")
	return b.String()
}
