package names

import "github.com/neugierig/proximo/internal/metrics"

var (
	lookupsTotal = metrics.MustRegisterCounterVec(
		"names",
		"lookups_total",
		"Number of name lookups by cache and the state the id was found in.",
		"cache", "state",
	)

	fetchFailuresTotal = metrics.MustRegisterCounterVec(
		"names",
		"fetch_failures_total",
		"Number of failed name fetches by cache.",
		"cache",
	)
)
