package query

import "github.com/neugierig/proximo/internal/metrics"

const (
	outcomeSuccess = metrics.OutcomeSuccess
	outcomeFailure = metrics.OutcomeFailure
)

var (
	inFlightGauge = metrics.MustRegisterGauge(
		"query",
		"in_flight",
		"Number of queries currently executing.",
	)

	queriesTotal = metrics.MustRegisterCounterVec(
		"query",
		"total",
		"Number of finished queries by outcome.",
		"outcome",
	)

	deliveriesDroppedTotal = metrics.MustRegisterCounter(
		"query",
		"deliveries_dropped_total",
		"Number of query outcomes dropped because the caller's loop was closed.",
	)
)
