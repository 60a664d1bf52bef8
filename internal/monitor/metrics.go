package monitor

import "github.com/neugierig/proximo/internal/metrics"

const (
	outcomeSuccess = metrics.OutcomeSuccess
	outcomeFailure = metrics.OutcomeFailure
)

var pollsTotal = metrics.MustRegisterCounterVec(
	"monitor",
	"polls_total",
	"Number of prediction polls by outcome.",
	"outcome",
)
