package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "doi_suggester"

// Metrics holds the pass collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	EntitiesChecked *prometheus.CounterVec
	Faults          *prometheus.CounterVec
	Suggestions     prometheus.Counter
	MemoLookups     *prometheus.CounterVec
	PassDuration    prometheus.Histogram
}

// NewMetrics creates the pass collectors and registers them on reg.
// Use a fresh prometheus.NewRegistry() per pass in tests.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EntitiesChecked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "entities_checked_total",
				Help:      "Leaf entities evaluated, by branch (existing, new, inferred)",
			},
			[]string{"branch"},
		),
		Faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "faults_total",
				Help:      "Entity-local faults, by kind",
			},
			[]string{"kind"},
		),
		Suggestions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "suggestions_total",
				Help:      "Suggestions emitted before grouping by ancestor",
			},
		),
		MemoLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "resolver",
				Name:      "memo_lookups_total",
				Help:      "Resolver memo lookups, by result (hit, miss)",
			},
			[]string{"result"},
		),
		PassDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "pass_duration_seconds",
				Help:      "Wall time of a suggestion pass",
				Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.EntitiesChecked, m.Faults, m.Suggestions, m.MemoLookups, m.PassDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeEntity(branch Branch) {
	if m == nil {
		return
	}
	m.EntitiesChecked.WithLabelValues(string(branch)).Inc()
}

func (m *Metrics) observeFaults(faults []*Fault) {
	if m == nil {
		return
	}
	for _, f := range faults {
		m.Faults.WithLabelValues(string(f.Kind)).Inc()
	}
}

func (m *Metrics) observeSuggestions(n int) {
	if m == nil {
		return
	}
	m.Suggestions.Add(float64(n))
}

func (m *Metrics) observeMemo(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.MemoLookups.WithLabelValues("hit").Inc()
	} else {
		m.MemoLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) observePass(start time.Time) {
	if m == nil {
		return
	}
	m.PassDuration.Observe(time.Since(start).Seconds())
}
