package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/loreleisim/internal/simulator"
)

func finishedSim(t *testing.T, outcome simulator.Outcome, trials uint64) *simulator.Simulator {
	t.Helper()
	gen := simulator.GeneratorFunc(func(ctx context.Context, state simulator.LoadedState, seed uint64) (simulator.Outcome, error) {
		return outcome, nil
	})
	sim, err := simulator.New([]byte{1, 2}, []byte{3, 4}, gen, simulator.Options{Trials: trials})
	if err != nil {
		t.Fatalf("simulator.New: %v", err)
	}
	sim.Start(4)
	deadline := time.Now().Add(10 * time.Second)
	for sim.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("simulator did not finish")
		}
		time.Sleep(time.Millisecond)
	}
	return sim
}

func TestCollectorExposesCounts(t *testing.T) {
	sim := finishedSim(t, 7, 100) // move 7 is Fire Punch

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(sim)); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]float64{}
	var moveLabel string
	for _, mf := range families {
		switch mf.GetName() {
		case "loreleisim_trials_total":
			byName["trials"] = mf.GetMetric()[0].GetCounter().GetValue()
		case "loreleisim_running":
			byName["running"] = mf.GetMetric()[0].GetGauge().GetValue()
		case "loreleisim_outcome_total":
			m := mf.GetMetric()
			if len(m) != 1 {
				t.Fatalf("outcome metric count = %d, want 1", len(m))
			}
			byName["outcome"] = m[0].GetCounter().GetValue()
			for _, lp := range m[0].GetLabel() {
				if lp.GetName() == "move" {
					moveLabel = lp.GetValue()
				}
			}
		}
	}

	if byName["trials"] != 100 {
		t.Errorf("trials_total = %v, want 100", byName["trials"])
	}
	if byName["outcome"] != 100 {
		t.Errorf("outcome_total = %v, want 100", byName["outcome"])
	}
	if byName["running"] != 0 {
		t.Errorf("running = %v, want 0", byName["running"])
	}
	if moveLabel != "Fire Punch" {
		t.Errorf("move label = %q, want Fire Punch", moveLabel)
	}
}

func TestCollectorScrapeWhileRunning(t *testing.T) {
	gen := simulator.GeneratorFunc(func(ctx context.Context, state simulator.LoadedState, seed uint64) (simulator.Outcome, error) {
		return simulator.Outcome(seed), nil
	})
	sim, err := simulator.New([]byte{1, 2}, []byte{3, 4}, gen, simulator.Options{})
	if err != nil {
		t.Fatalf("simulator.New: %v", err)
	}
	sim.Start(4)
	defer sim.Stop()

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(NewCollector(sim)); err != nil {
		t.Fatalf("register: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := reg.Gather(); err != nil {
			t.Fatalf("gather %d: %v", i, err)
		}
	}
}
