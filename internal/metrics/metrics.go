package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks recommendation run volume and the all-pairs critical path.
type Metrics struct {
	PairsEvaluated  prometheus.Counter
	PairsSkipped    prometheus.Counter
	Recommendations prometheus.Counter
	RunDuration     prometheus.Histogram
	EvaluateLatency prometheus.Histogram
}

// New registers all collectors on reg. A nil reg uses a private registry so
// repeated construction in tests does not collide. When reg already holds
// these collectors, as with two clients sharing prometheus.DefaultRegisterer,
// the registered ones are reused and both instances feed the same series.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Metrics{
		PairsEvaluated: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "purebreed_pairs_evaluated_total",
			Help: "Total number of (male, female) pairs enumerated and scored",
		})),
		PairsSkipped: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "purebreed_pairs_skipped_total",
			Help: "Total number of pairs skipped because enumeration failed",
		})),
		Recommendations: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "purebreed_recommendations_total",
			Help: "Total number of per-male recommendations produced",
		})),
		RunDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "purebreed_recommend_duration_seconds",
			Help:    "Duration of full recommendation runs",
			Buckets: durationBuckets,
		})),
		EvaluateLatency: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "purebreed_evaluate_duration_seconds",
			Help:    "Duration of the all-pairs evaluation phase",
			Buckets: durationBuckets,
		})),
	}
}

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}

// register adds c to reg, returning the collector already registered under the
// same descriptor if there is one. Any other registration error is a
// programming error and panics, as MustRegister does.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) AddPairsEvaluated(n int) {
	m.PairsEvaluated.Add(float64(n))
}

func (m *Metrics) AddPairsSkipped(n int) {
	m.PairsSkipped.Add(float64(n))
}

func (m *Metrics) AddRecommendations(n int) {
	m.Recommendations.Add(float64(n))
}

// ObserveRun records the duration of a Recommend call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRun(start time.Time) {
	m.RunDuration.Observe(time.Since(start).Seconds())
}

// ObserveEvaluate records the duration of the all-pairs phase.
func (m *Metrics) ObserveEvaluate(start time.Time) {
	m.EvaluateLatency.Observe(time.Since(start).Seconds())
}

// WriteTextfile dumps every collector in g in the Prometheus text format, for
// node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
