// Package metrics exposes attendance counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teacher_attendance"

// Recorder counts attendance events. A nil *Recorder is valid and records nothing.
type Recorder struct {
	checkIns        *prometheus.CounterVec
	checkOuts       *prometheus.CounterVec
	overrides       *prometheus.CounterVec
	earlyDepartures *prometheus.CounterVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		checkIns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_ins_total",
			Help:      "Teacher check-ins by resulting status.",
		}, []string{"status"}),
		checkOuts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_outs_total",
			Help:      "Teacher check-outs, split by early departure.",
		}, []string{"early"}),
		overrides: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_overrides_total",
			Help:      "Supervisor overrides by forced status.",
		}, []string{"status"}),
		earlyDepartures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "early_departure_requests_total",
			Help:      "Early departure workflow transitions.",
		}, []string{"outcome"}),
	}
}

func (r *Recorder) CheckIn(status string) {
	if r == nil {
		return
	}
	r.checkIns.WithLabelValues(status).Inc()
}

func (r *Recorder) CheckOut(early bool) {
	if r == nil {
		return
	}
	r.checkOuts.WithLabelValues(strconv.FormatBool(early)).Inc()
}

func (r *Recorder) Override(status string) {
	if r == nil {
		return
	}
	r.overrides.WithLabelValues(status).Inc()
}

// EarlyDeparture records a workflow transition: requested, approved or rejected.
func (r *Recorder) EarlyDeparture(outcome string) {
	if r == nil {
		return
	}
	r.earlyDepartures.WithLabelValues(outcome).Inc()
}

// NewRegistry returns a registry preloaded with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
