package mapper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bdsul/grace/genome"
)

// Decode result label values.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultSkipped = "skipped"
	ResultError   = "error"
)

// Metrics collects decode statistics. A nil *Metrics collects nothing.
type Metrics struct {
	Decodes       *prometheus.CounterVec
	WrapEvents    prometheus.Counter
	EffectiveSize prometheus.Histogram
}

// NewMetrics creates decode metrics registered with reg, nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decodes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grace_mapper_decodes_total",
			Help: "Total number of genome decodes by result",
		}, []string{"result"}),
		WrapEvents: f.NewCounter(prometheus.CounterOpts{
			Name: "grace_mapper_wrap_events_total",
			Help: "Total number of codon wrap events",
		}),
		EffectiveSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "grace_mapper_effective_size",
			Help:    "Number of codons consumed per decode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

func (m *Metrics) observe(g *genome.Genome) {
	if m == nil {
		return
	}

	result := ResultInvalid
	if g.PhenotypeValid {
		result = ResultValid
	}
	m.Decodes.WithLabelValues(result).Inc()
	m.WrapEvents.Add(float64(g.WrapEvents))
	m.EffectiveSize.Observe(float64(g.EffectiveSize))
}

func (m *Metrics) observeSkip() {
	if m != nil {
		m.Decodes.WithLabelValues(ResultSkipped).Inc()
	}
}

func (m *Metrics) observeError() {
	if m != nil {
		m.Decodes.WithLabelValues(ResultError).Inc()
	}
}
