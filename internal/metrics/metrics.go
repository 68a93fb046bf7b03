package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Total number of scored submissions",
		},
		[]string{"quiz_type"},
	)

	ClassificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_classifications_total",
			Help: "Classifications by how they were reached",
		},
		[]string{"kind"},
	)

	DegradedScoringCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_degraded_scorings_total",
			Help: "Complex submissions scored through inline link reconciliation",
		},
	)

	RepairCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_repairs_total",
			Help: "Integrity repair runs by outcome",
		},
		[]string{"outcome"},
	)

	RejectedSubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_rejected_submissions_total",
			Help: "Submissions rejected before scoring",
		},
		[]string{"reason"},
	)
)

var initOnce sync.Once

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(SubmissionCounter)
		prometheus.MustRegister(ClassificationCounter)
		prometheus.MustRegister(DegradedScoringCounter)
		prometheus.MustRegister(RepairCounter)
		prometheus.MustRegister(RejectedSubmissionCounter)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
