package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type pingMsg struct{}

// counter counts pings, chains one follow-up per "p" and quits on "q".
type counter struct {
	pings int
	width int
}

func (c counter) Init() tea.Cmd { return func() tea.Msg { return pingMsg{} } }

func (c counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pingMsg:
		c.pings++
	case tea.WindowSizeMsg:
		c.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "p":
			return c, tea.Batch(
				func() tea.Msg { return pingMsg{} },
				tea.Tick(time.Hour, func(time.Time) tea.Msg { return pingMsg{} }),
			)
		case "q":
			return c, tea.Quit
		}
	}
	return c, nil
}

func (c counter) View() string { return "" }

func TestDriver_DrainsInitAndBatches(t *testing.T) {
	d := New(t, counter{}, WithSize(80, 24))
	d.DrainInit()
	assert.Equal(t, 1, d.Model.(counter).pings)
	assert.Equal(t, 80, d.Model.(counter).width)

	d.PressKey('p')
	assert.Equal(t, 2, d.Model.(counter).pings, "slow tick is dropped")
}

func TestDriver_StopsAfterQuit(t *testing.T) {
	d := New(t, counter{})
	d.PressKey('q')
	assert.True(t, d.Quitting)

	d.Send(pingMsg{})
	assert.Equal(t, 0, d.Model.(counter).pings)
}
