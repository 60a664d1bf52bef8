package models

// PredictionRow is one rendered row of a stop's prediction list. Names fall
// back to placeholders until the name caches have resolved them.
type PredictionRow struct {
	RouteID   string `json:"routeId"`
	RouteName string `json:"routeName"`
	RunID     string `json:"runId"`
	RunName   string `json:"runName"`
	Minutes   int    `json:"minutes"`
	Text      string `json:"text"`
}

// StopPredictions is the entry returned for a stop's prediction list.
// NamesVersion changes whenever a display name resolves, telling the client
// that re-rendering would show more names.
type StopPredictions struct {
	StopID       string          `json:"stopId"`
	Predictions  []PredictionRow `json:"predictions"`
	NamesVersion uint64          `json:"namesVersion"`
}

// NoPredictionsText is shown in place of an empty prediction list.
const NoPredictionsText = "(no arrivals predicted)"
