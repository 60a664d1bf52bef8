package models

import "strconv"

// Prediction is a single arrival estimate for a stop. Predictions are produced
// fresh on every fetch and are never persisted.
type Prediction struct {
	RouteID     string `json:"routeId"`
	RunID       string `json:"runId"`
	Minutes     int    `json:"minutes"`
	IsDeparting bool   `json:"isDeparting"`
}

func NewPrediction(routeID, runID string, minutes int, isDeparting bool) Prediction {
	return Prediction{
		RouteID:     routeID,
		RunID:       runID,
		Minutes:     minutes,
		IsDeparting: isDeparting,
	}
}

// Text renders the prediction the way it is shown in a list row.
func (p Prediction) Text() string {
	switch {
	case p.Minutes == 0 && p.IsDeparting:
		return "Departing"
	case p.Minutes == 0:
		return "Arriving"
	case p.Minutes == 1:
		return "1 minute"
	default:
		return strconv.Itoa(p.Minutes) + " minutes"
	}
}

func (p Prediction) String() string {
	return p.Text()
}
