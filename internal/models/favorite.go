package models

// Favorite is a starred (route, stop) pair together with the display names
// that were known when it was starred.
type Favorite struct {
	RouteID   string `json:"routeId"`
	RouteName string `json:"routeName"`
	RunID     string `json:"runId"`
	RunName   string `json:"runName"`
	StopID    string `json:"stopId"`
	StopName  string `json:"stopName"`
}
