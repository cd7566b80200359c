package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LinkStatusMsg reports the result of one liveness probe
type LinkStatusMsg struct {
	Alive bool
	At    time.Time
}

// MonitorModel is a Bubble Tea model showing the liveness of a device
// connection. It quits on q, esc, ctrl+c, or when the link is lost.
type MonitorModel struct {
	addr     string
	interval time.Duration
	spinner  spinner.Model
	checks   int
	lastSeen time.Time
	lost     bool
	lostAt   time.Time
	quitting bool
}

// NewMonitorModel creates a model for the device at addr
func NewMonitorModel(addr string, interval time.Duration) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	return MonitorModel{
		addr:     addr,
		interval: interval,
		spinner:  s,
		lastSeen: time.Now(),
	}
}

// Lost reports whether the model ended because the link was lost
func (m MonitorModel) Lost() bool {
	return m.lost
}

// Checks returns the number of successful probes seen
func (m MonitorModel) Checks() int {
	return m.checks
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case LinkStatusMsg:
		if !msg.Alive {
			m.lost = true
			m.lostAt = msg.At
			return m, tea.Quit
		}
		m.checks++
		m.lastSeen = msg.At
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m MonitorModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderTitleStyle.Render("MONITORING " + m.addr))
	b.WriteString("\n")
	b.WriteString(HeaderCommandStyle.Render(fmt.Sprintf("IS_ALIVE every %s", m.interval)))
	b.WriteString("\n\n")

	switch {
	case m.lost:
		b.WriteString(ErrorTitleStyle.Render(fmt.Sprintf("  %s  Connection lost at %s", FailureMarker, m.lostAt.Format("15:04:05"))))
	default:
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
		b.WriteString(StepCompleteStyle.Render(" Connected"))
		b.WriteString(StepNoteStyle.Render(fmt.Sprintf("  (%d checks, last %s)", m.checks, m.lastSeen.Format("15:04:05"))))
	}
	b.WriteString("\n\n")

	if !m.lost && !m.quitting {
		b.WriteString(StepPendingStyle.Render("  Press q to quit"))
		b.WriteString("\n")
	}
	return b.String()
}
