package proximo

import "github.com/neugierig/proximo/internal/metrics"

// Resource label values.
const (
	resourceRoutes      = "routes"
	resourceRoute       = "route"
	resourceRuns        = "runs"
	resourceRun         = "run"
	resourceStops       = "stops"
	resourcePredictions = "predictions"
)

const (
	outcomeSuccess     = metrics.OutcomeSuccess
	outcomeFetchError  = "fetch_error"
	outcomeDecodeError = "decode_error"
)

var (
	requestsTotal = metrics.MustRegisterCounterVec(
		"client",
		"requests_total",
		"Number of API requests by resource and outcome.",
		"resource", "outcome",
	)

	requestDurationSeconds = metrics.MustRegisterHistogramVec(
		"client",
		"request_duration_seconds",
		"Duration of API requests including decoding.",
		[]float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		"resource",
	)

	requestsCoalescedTotal = metrics.MustRegisterCounter(
		"client",
		"requests_coalesced_total",
		"Number of fetches answered by an identical in-flight request.",
	)
)
