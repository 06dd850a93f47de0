package main

import (
	"github.com/miretskiy/mm1ksim/simulator"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Prometheus metrics (gauges)
	promMetrics = struct {
		virtualTime prometheus.Gauge
		waiting     prometheus.Gauge
		busy        prometheus.Gauge
		lossRate    prometheus.Gauge
		meanCount   prometheus.Gauge
		theoryCount prometheus.Gauge
	}{
		virtualTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mm1k_virtual_time",
			Help: "Current virtual time of the live run",
		}),
		waiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mm1k_wait_line_length",
			Help: "Number of elements waiting for the server",
		}),
		busy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mm1k_server_busy",
			Help: "Server state (0=idle, 1=busy)",
		}),
		lossRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mm1k_loss_rate",
			Help: "Fraction of terminal elements rejected so far",
		}),
		meanCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mm1k_mean_count",
			Help: "Empirical mean number in system of the last finished run",
		}),
		theoryCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mm1k_theory_mean_count",
			Help: "Closed-form mean number in system of the last finished run",
		}),
	}

	// Prometheus metrics (counters)
	promCounters = struct {
		events   *prometheus.CounterVec
		terminal *prometheus.CounterVec
	}{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mm1k_events_total",
			Help: "Processed events by type",
		}, []string{"type"}),
		terminal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mm1k_elements_total",
			Help: "Elements that left the system, by outcome",
		}, []string{"state"}),
	}
)

func initPrometheusMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		promMetrics.virtualTime,
		promMetrics.waiting,
		promMetrics.busy,
		promMetrics.lossRate,
		promMetrics.meanCount,
		promMetrics.theoryCount,
		promCounters.events,
		promCounters.terminal,
	)
}

// metricsHook feeds the counters from inside the simulation loop
type metricsHook struct{}

func (metricsHook) Func(ctx simulator.HookCtx) {
	switch ctx.Pos {
	case simulator.HookPosAfterEvent:
		event := ctx.Item.(simulator.Event)
		promCounters.events.WithLabelValues(event.Type().String()).Inc()
	case simulator.HookPosElementTerminal:
		e := ctx.Item.(*simulator.Element)
		promCounters.terminal.WithLabelValues(e.State().String()).Inc()
	}
}

func updatePrometheusMetrics(snap simulator.Snapshot) {
	promMetrics.virtualTime.Set(snap.VirtualTime)
	promMetrics.waiting.Set(float64(snap.Waiting))

	if snap.Busy {
		promMetrics.busy.Set(1.0)
	} else {
		promMetrics.busy.Set(0.0)
	}

	if n := snap.Served + snap.Rejected + snap.Drained; n > 0 {
		promMetrics.lossRate.Set(float64(snap.Rejected) / float64(n))
	}
}

func updatePrometheusResult(result *simulator.RunResult) {
	promMetrics.meanCount.Set(result.Empirical.MeanCount)
	promMetrics.theoryCount.Set(result.Theory.MeanCount)
}
