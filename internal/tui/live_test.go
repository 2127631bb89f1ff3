package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/loreleisim/internal/simulator"
)

func newTestSim(t *testing.T, outcome simulator.Outcome, trials uint64) *simulator.Simulator {
	t.Helper()
	gen := simulator.GeneratorFunc(func(ctx context.Context, state simulator.LoadedState, seed uint64) (simulator.Outcome, error) {
		return outcome, nil
	})
	sim, err := simulator.New([]byte{1}, []byte{2}, gen, simulator.Options{Trials: trials})
	if err != nil {
		t.Fatalf("simulator.New: %v", err)
	}
	return sim
}

func TestViewShowsWaitingBeforeFirstTrial(t *testing.T) {
	sim := newTestSim(t, 7, 10)
	m := New(sim, "Pokémon: Yellow Version", 50*time.Millisecond)

	out := m.View()
	if !strings.Contains(out, "Pokémon: Yellow Version") {
		t.Errorf("view missing title:\n%s", out)
	}
	if !strings.Contains(out, "Awaiting the AI's decision") {
		t.Errorf("view missing waiting message:\n%s", out)
	}
}

func TestViewRendersMoveRows(t *testing.T) {
	sim := newTestSim(t, 7, 500) // move 7 is Fire Punch
	sim.Start(4)
	deadline := time.Now().Add(10 * time.Second)
	for sim.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("simulator did not finish")
		}
		time.Sleep(time.Millisecond)
	}

	m := New(sim, "Pokémon: Yellow Version", 50*time.Millisecond)
	out := m.View()
	if !strings.Contains(out, "Fire Punch") {
		t.Errorf("view missing move name:\n%s", out)
	}
	if !strings.Contains(out, "500") {
		t.Errorf("view missing trial count:\n%s", out)
	}
	if !strings.Contains(out, "100.00%") {
		t.Errorf("view missing percentage:\n%s", out)
	}
}

func TestUpdateQuitsWhenRunEnds(t *testing.T) {
	sim := newTestSim(t, 7, 100)
	sim.Start(2)
	deadline := time.Now().Add(10 * time.Second)
	for sim.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("simulator did not finish")
		}
		time.Sleep(time.Millisecond)
	}

	m := New(sim, "test", 50*time.Millisecond)
	next, cmd := m.Update(tickMsg(time.Now()))
	model := next.(Model)
	if model.Stopped() {
		t.Error("natural finish reported as a user stop")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestUpdateStopsOnQuitKey(t *testing.T) {
	sim := newTestSim(t, 7, 0)
	sim.Start(2)

	m := New(sim, "test", 50*time.Millisecond)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	model := next.(Model)
	if !model.Stopped() {
		t.Error("model not marked stopped after q")
	}
	if sim.IsRunning() {
		t.Error("simulator still running after q")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestWindowSizeResizesBars(t *testing.T) {
	sim := newTestSim(t, 7, 0)
	m := New(sim, "test", 50*time.Millisecond)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if next.(Model).width != 120 {
		t.Errorf("width = %d, want 120", next.(Model).width)
	}
}
