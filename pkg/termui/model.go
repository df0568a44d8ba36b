package termui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zurustar/drumvis/pkg/clock"
	"github.com/zurustar/drumvis/pkg/config"
	"github.com/zurustar/drumvis/pkg/editor"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d3d3d3")).Background(lipgloss.Color("#202020"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffff00")).Background(lipgloss.Color("#202020"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

const helpText = "space:play/pause  s:stop  ↑/↓:bpm  1-6:speed  f:figure  c:clear  q:quit"

type tickMsg time.Time

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// keyFor maps a bubbletea key string to a binding.
func keyFor(s string) (editor.Key, bool) {
	switch s {
	case " ":
		return editor.KeyPlayPause, false
	case "s", "S":
		return editor.KeyStop, false
	case "up":
		return editor.KeyBPMUp, false
	case "shift+up":
		return editor.KeyBPMUp, true
	case "down":
		return editor.KeyBPMDown, false
	case "shift+down":
		return editor.KeyBPMDown, true
	case "1":
		return editor.KeySpeed1, false
	case "2":
		return editor.KeySpeed2, false
	case "3":
		return editor.KeySpeed3, false
	case "4":
		return editor.KeySpeed4, false
	case "5":
		return editor.KeySpeed5, false
	case "6":
		return editor.KeySpeed6, false
	case "f", "F":
		return editor.KeyFigure, false
	case "c", "C":
		return editor.KeyClear, false
	case "esc", "q", "Q", "ctrl+c":
		return editor.KeyQuit, false
	}
	return editor.KeyNone, false
}

// Model is the bubbletea model around a session.
type Model struct {
	session  *editor.Session
	interval time.Duration
	timeout  time.Duration
	start    time.Time
	width    int
	height   int
	quitting bool
}

// NewModel creates a model ticking rate times per second.
func NewModel(session *editor.Session, rate int, timeout time.Duration) Model {
	if rate <= 0 {
		rate = clock.DefaultTickRate
	}
	return Model{
		session:  session,
		interval: time.Second / time.Duration(rate),
		timeout:  timeout,
		start:    time.Now(),
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return tick(m.interval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		key, shift := keyFor(msg.String())
		if key == editor.KeyQuit {
			m.quitting = true
			return m, tea.Quit
		}
		// 不正な値はステータス行のメッセージで通知される
		_ = m.session.Press(key, shift)

	case tickMsg:
		now := time.Time(msg)
		if m.timeout > 0 && now.Sub(m.start) >= m.timeout {
			m.quitting = true
			return m, tea.Quit
		}
		m.session.Tick(now)
		return m, tick(m.interval)
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// 下3行: ステータス、メッセージ、ヘルプ
	grid := NewGrid(m.width, max(m.height-3, 0))
	m.session.Draw(grid)

	status := statusStyle.Width(m.width).MaxWidth(m.width).Render(m.session.Status())
	message := messageStyle.Width(m.width).MaxWidth(m.width).Render(m.session.Message())
	help := helpStyle.MaxWidth(m.width).Render(helpText)

	return fmt.Sprintf("%s\n%s\n%s\n%s", grid.Render(), status, message, help)
}

// Run runs the terminal UI until quit or timeout.
func Run(session *editor.Session, cfg config.WindowConfig, timeout time.Duration) error {
	p := tea.NewProgram(NewModel(session, cfg.TickRate, timeout), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
