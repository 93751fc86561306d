package tracking

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	saves       prometheus.Counter
	matches     *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
	undecodable prometheus.Counter
	fuzzyScores prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_saves_total",
			Help: "Tracking records saved.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_matches_total",
			Help: "Match attempts by outcome (exact, fuzzy, none).",
		}, []string{"outcome"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracking_store_errors_total",
			Help: "Failed calls to the tracking store by operation.",
		}, []string{"op"}),
		undecodable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracking_undecodable_records_total",
			Help: "Stored values skipped because they are not tracking records.",
		}),
		fuzzyScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracking_fuzzy_best_score",
			Help:    "Best similarity score seen per fuzzy lookup with candidates.",
			Buckets: []float64{0.2, 0.4, 0.6, 0.7, 0.8, 0.9, 1},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.saves, m.matches, m.storeErrors, m.undecodable, m.fuzzyScores)
	}
	return m
}
