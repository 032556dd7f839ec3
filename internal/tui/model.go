// Package tui renders a terminal dashboard of Mudra's state and activity.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/events"
	"github.com/ayusman/mudra/internal/server/api"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// LogSize is how many activity lines the dashboard keeps.
	LogSize = 12

	refreshInterval = 500 * time.Millisecond
)

// Model is the root Bubble Tea model.
type Model struct {
	ctrl   api.Controller
	status api.Status
	log    []events.Event
	err    error
	width  int
}

// New creates a Model controlling ctrl.
func New(ctrl api.Controller) Model {
	return Model{
		ctrl:   ctrl,
		status: ctrl.Status(),
	}
}

// Forward sends every event from sub to p until sub is closed.
func Forward(p *tea.Program, sub *events.Subscription) {
	for e := range sub.C {
		p.Send(EventMsg(e))
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		m.status = m.ctrl.Status()
		return m, tickCmd()

	case EventMsg:
		if msg.Type != events.VoiceStatus {
			m.log = append(m.log, events.Event(msg))
			if len(m.log) > LogSize {
				m.log = m.log[len(m.log)-LogSize:]
			}
		}
		m.status = m.ctrl.Status()
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "t", "T":
		if err := m.ctrl.SetTracking(!m.status.Tracking); err != nil {
			m.err = err
		}

	case "v", "V":
		if err := m.ctrl.SetVoice(!m.status.Voice); err != nil {
			m.err = err
		}

	case "+", "=", "up", "k":
		m.ctrl.SetSmoothing(m.status.Smoothing + 1)

	case "-", "_", "down", "j":
		m.ctrl.SetSmoothing(m.status.Smoothing - 1)
	}

	m.status = m.ctrl.Status()
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Mudra"))
	b.WriteString("\n")

	rows := []string{
		row("Tracking", onOff(m.status.Tracking)),
		row("Voice", onOff(m.status.Voice)+StyleOff.Render(" ("+m.status.VoiceStatus+")")),
		row("Mode", StyleValue.Render(m.status.Mode)),
		row("Hand", yesNo(m.status.HandPresent)),
		row("Dragging", yesNo(m.status.Dragging)),
		row("Smoothing", StyleValue.Render(fmt.Sprintf("%d", m.status.Smoothing))),
		row("Frame rate", StyleValue.Render(fmt.Sprintf("%d fps", m.status.FPS))),
	}
	b.WriteString(StylePanel.Render(strings.Join(rows, "\n")))
	b.WriteString("\n")

	var lines []string
	for _, e := range m.log {
		line := StyleLogTime.Render(e.Time.Format("15:04:05")) + " "
		if e.Type == events.VoiceError || e.Type == events.TrackingError {
			line += StyleError.Render(e.Message)
		} else {
			line += e.Message
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, StyleOff.Render("No activity yet"))
	}
	b.WriteString(StylePanel.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(StyleError.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString(StyleHelp.Render("t tracking • v voice • +/- smoothing • q quit"))

	return b.String()
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, StyleLabel.Render(label), value)
}

func onOff(on bool) string {
	if on {
		return StyleOn.Render("on")
	}
	return StyleOff.Render("off")
}

func yesNo(v bool) string {
	if v {
		return StyleOn.Render("yes")
	}
	return StyleOff.Render("no")
}
