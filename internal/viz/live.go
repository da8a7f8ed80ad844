package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"dfbasim/internal/dfba"
)

const (
	chartWidth      = 70
	chartHeight     = 12
	historyCapacity = 400
	stepsPerFrame   = 5
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the simulation on a frame tick and renders concentration
// traces. It owns its system exclusively for the duration of the program.
type Model struct {
	sys      dfba.System
	integ    dfba.Integrator
	initial  dfba.State
	x        dfba.State
	t        float64
	dt       float64
	duration float64
	labels   []string
	history  [][]float64
	running  bool
	err      error
}

func NewModel(sys dfba.System, integ dfba.Integrator, x0 dfba.State, dt, duration float64) Model {
	labels := sys.Labels()
	history := make([][]float64, len(labels))
	for i := range history {
		history[i] = make([]float64, 0, historyCapacity)
	}
	return Model{
		sys:      sys,
		integ:    integ,
		initial:  x0.Clone(),
		x:        x0.Clone(),
		dt:       dt,
		duration: duration,
		labels:   labels,
		history:  history,
		running:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.x = m.initial.Clone()
			m.t = 0
			m.err = nil
			m.running = true
			for i := range m.history {
				m.history[i] = m.history[i][:0]
			}
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil && m.t < m.duration {
			for i := 0; i < stepsPerFrame && m.t < m.duration; i++ {
				newX, err := m.integ.Step(m.sys, m.x, m.t, m.dt)
				if err != nil {
					m.err = err
					m.running = false
					break
				}
				m.x = newX
				m.t += m.dt
			}
			m.record()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) record() {
	for i := range m.history {
		m.history[i] = append(m.history[i], m.x[i])
		if len(m.history[i]) > historyCapacity {
			m.history[i] = m.history[i][1:]
		}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("dfbasim live  t = %.2f h / %.1f h", m.t, m.duration)))
	b.WriteString("\n")

	if len(m.history) > 0 && len(m.history[0]) > 1 {
		chart := asciigraph.PlotMany(m.history,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
		)
		b.WriteString(graphStyle.Render(chart))
		b.WriteString("\n")
	}

	for i, label := range m.labels {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%10.4f g/L", m.x[i])))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render("solver failure: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.t >= m.duration {
		b.WriteString(valueStyle.Render("finished"))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause · r reset · q quit"))
	return b.String()
}

// Run starts the live view and blocks until it exits.
func Run(sys dfba.System, integ dfba.Integrator, x0 dfba.State, dt, duration float64) error {
	p := tea.NewProgram(NewModel(sys, integ, x0, dt, duration), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
