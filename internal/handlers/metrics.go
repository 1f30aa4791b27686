package handlers

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"costbook/internal/costing"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costbook_resolutions_total",
			Help: "Recipe cost resolutions by outcome",
		},
		[]string{"outcome"},
	)

	resolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "costbook_resolution_duration_seconds",
			Help:    "Time spent resolving a request's recipe costs",
			Buckets: prometheus.DefBuckets,
		},
	)

	unresolvedLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costbook_unresolved_lines_total",
			Help: "Relations that contributed nothing to a resolved cost",
		},
		[]string{"reason"},
	)
)

func observeResolution(result costing.CostResult, err error) {
	switch {
	case err == nil:
		resolutionsTotal.WithLabelValues("resolved").Inc()
		for _, issue := range result.Unresolved {
			unresolvedLines.WithLabelValues(string(issue.Reason)).Inc()
		}
	case errors.Is(err, costing.ErrCycleDetected):
		resolutionsTotal.WithLabelValues("cycle").Inc()
	case errors.Is(err, costing.ErrRecipeNotFound):
		resolutionsTotal.WithLabelValues("not_found").Inc()
	default:
		resolutionsTotal.WithLabelValues("error").Inc()
	}
}

func observeDuration(start time.Time) {
	resolutionDuration.Observe(time.Since(start).Seconds())
}
