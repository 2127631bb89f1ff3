// Package telemetry exposes live simulator counters as Prometheus metrics.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/loreleisim/internal/moves"
	"github.com/san-kum/loreleisim/internal/simulator"
)

// Collector reads a Simulator's result snapshot on every scrape. It holds
// no state of its own, so scrapes never block trial workers beyond the
// per-slot atomic loads of a snapshot.
type Collector struct {
	sim *simulator.Simulator

	trials  *prometheus.Desc
	outcome *prometheus.Desc
	running *prometheus.Desc
}

// NewCollector builds a collector over sim.
func NewCollector(sim *simulator.Simulator) *Collector {
	return &Collector{
		sim: sim,
		trials: prometheus.NewDesc(
			"loreleisim_trials_total",
			"Completed trials across all runs of this simulator.",
			nil, nil,
		),
		outcome: prometheus.NewDesc(
			"loreleisim_outcome_total",
			"Completed trials per observed move outcome.",
			[]string{"id", "move"}, nil,
		),
		running: prometheus.NewDesc(
			"loreleisim_running",
			"Whether trial workers are currently active.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.trials
	ch <- c.outcome
	ch <- c.running
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.sim.Results()
	var total uint64
	for _, oc := range snapshot {
		total += oc.Count
		name, ok := moves.Name(uint8(oc.Outcome))
		if !ok {
			name = "unknown"
		}
		ch <- prometheus.MustNewConstMetric(
			c.outcome, prometheus.CounterValue, float64(oc.Count),
			strconv.Itoa(int(oc.Outcome)), name,
		)
	}
	ch <- prometheus.MustNewConstMetric(c.trials, prometheus.CounterValue, float64(total))

	running := 0.0
	if c.sim.IsRunning() {
		running = 1
	}
	ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, running)
}

// Serve registers a collector for sim and serves /metrics on addr in a
// background goroutine. The returned server should be shut down by the
// caller when the run ends.
func Serve(addr string, sim *simulator.Simulator) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(sim))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return srv
}
