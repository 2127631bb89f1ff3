// Package tui renders live simulation results in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/loreleisim/internal/moves"
	"github.com/san-kum/loreleisim/internal/simulator"
)

const rateHistory = 60

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	moveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(14)
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(10).Align(lipgloss.Right)
	percentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Width(9).Align(lipgloss.Right)
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
	waitStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).MarginTop(1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

// Model polls a running simulator and renders its aggregate results. It
// implements tea.Model.
type Model struct {
	sim     *simulator.Simulator
	title   string
	refresh time.Duration

	start     time.Time
	lastCount uint64
	lastTick  time.Time
	rate      []float64
	width     int
	stopped   bool
}

// New builds a live view over sim. The title is shown in the header,
// typically the detected game name.
func New(sim *simulator.Simulator, title string, refresh time.Duration) Model {
	now := time.Now()
	return Model{
		sim:      sim,
		title:    title,
		refresh:  refresh,
		start:    now,
		lastTick: now,
		rate:     make([]float64, 0, rateHistory),
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sim.Stop()
			m.stopped = true
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		count := m.sim.TrialCount()
		if dt := now.Sub(m.lastTick).Seconds(); dt > 0 {
			m.rate = append(m.rate, float64(count-m.lastCount)/dt)
			if len(m.rate) > rateHistory {
				m.rate = m.rate[1:]
			}
		}
		m.lastCount = count
		m.lastTick = now

		if !m.sim.IsRunning() {
			return m, tea.Quit
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	elapsed := time.Since(m.start).Round(time.Second)
	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%d threads · %s elapsed", m.sim.Threads(), elapsed)))
	b.WriteString("\n\n")

	results := m.sim.Results()
	var total uint64
	for _, oc := range results {
		total += oc.Count
	}

	if total == 0 {
		if time.Since(m.start) < 5*time.Second {
			b.WriteString(waitStyle.Render("Awaiting the AI's decision..."))
		} else {
			b.WriteString(waitStyle.Render(fmt.Sprintf(
				"No response in %d seconds. Did you give me the right save state?",
				int(time.Since(m.start).Seconds()))))
		}
		b.WriteString("\n")
	} else {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%d trials", total)))
		b.WriteString("\n")
		barWidth := m.width - 40
		if barWidth < 10 {
			barWidth = 10
		}
		for _, oc := range results {
			name, ok := moves.Name(uint8(oc.Outcome))
			if !ok {
				name = fmt.Sprintf("UNK (0x%02X)", uint8(oc.Outcome))
			}
			percent := 100 * float64(oc.Count) / float64(total)
			bar := strings.Repeat("█", int(percent/100*float64(barWidth)))
			b.WriteString(moveStyle.Render(name))
			b.WriteString(countStyle.Render(fmt.Sprintf("%d", oc.Count)))
			b.WriteString(percentStyle.Render(fmt.Sprintf("%6.2f%%", percent)))
			b.WriteString("  ")
			b.WriteString(barStyle.Render(bar))
			b.WriteString("\n")
		}
	}

	if len(m.rate) >= 2 {
		graph := asciigraph.Plot(m.rate,
			asciigraph.Height(5),
			asciigraph.Caption("trials/sec"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("q: stop and show final results"))
	b.WriteString("\n")
	return b.String()
}

// Stopped reports whether the user quit the view before the run ended on
// its own.
func (m Model) Stopped() bool { return m.stopped }
