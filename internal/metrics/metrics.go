package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusLabel = "status"
	KindLabel   = "kind"
	PhaseLabel  = "phase"
)

var (
	oracleQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_queries_total",
			Help: "Number of satisfiability queries answered by the decision oracle",
		},
		[]string{StatusLabel},
	)

	oracleQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "oracle_query_duration_seconds",
			Help:    "Wall time of a single decision oracle query",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	latticeSamples = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lattice_samples_total",
			Help: "Number of points drawn from lattice samplers",
		},
	)

	latticeBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lattice_blocks_total",
			Help: "Number of blocking clauses added to lattice samplers",
		},
		[]string{KindLabel},
	)

	musExtractions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mus_extractions_total",
			Help: "Number of minimal unsatisfiable subsets extracted",
		},
	)

	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frames_total",
			Help: "Number of abstract frames computed",
		},
		[]string{PhaseLabel},
	)

	refinements = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "refinements_total",
			Help: "Number of clauses added to the candidate family by counterexamples",
		},
	)

	familySize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "candidate_family_size",
			Help: "Number of clauses in the candidate family of the running synthesis",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call twice.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(oracleQueries)
		prometheus.MustRegister(oracleQueryDuration)
		prometheus.MustRegister(latticeSamples)
		prometheus.MustRegister(latticeBlocks)
		prometheus.MustRegister(musExtractions)
		prometheus.MustRegister(frames)
		prometheus.MustRegister(refinements)
		prometheus.MustRegister(familySize)
	})
}

func ObserveQuery(status string, elapsed time.Duration) {
	oracleQueries.WithLabelValues(status).Inc()
	oracleQueryDuration.Observe(elapsed.Seconds())
}

func CountSample() {
	latticeSamples.Inc()
}

func CountBlock(kind string) {
	latticeBlocks.WithLabelValues(kind).Inc()
}

func CountMUS() {
	musExtractions.Inc()
}

func CountFrame(phase string) {
	frames.WithLabelValues(phase).Inc()
}

func CountRefinement() {
	refinements.Inc()
}

func SetFamilySize(n int) {
	familySize.Set(float64(n))
}
