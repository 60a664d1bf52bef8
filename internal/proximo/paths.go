package proximo

import "net/url"

// Resource path builders. Every id is escaped as a single path segment so a
// space becomes %20 (never '+') and a '/' inside an id cannot add a segment.

func RoutesPath() string {
	return "routes.json"
}

func RoutePath(routeID string) string {
	return "routes/" + url.PathEscape(routeID) + ".json"
}

func RunsPath(routeID string) string {
	return "routes/" + url.PathEscape(routeID) + "/runs.json"
}

func RunPath(routeID, runID string) string {
	return "routes/" + url.PathEscape(routeID) + "/runs/" + url.PathEscape(runID) + ".json"
}

func StopsPath(routeID, runID string) string {
	return "routes/" + url.PathEscape(routeID) + "/runs/" + url.PathEscape(runID) + "/stops.json"
}

func PredictionsPath(stopID string) string {
	return "stops/" + url.PathEscape(stopID) + "/predictions.json"
}

func PredictionsByRoutePath(stopID, routeID string) string {
	return "stops/" + url.PathEscape(stopID) + "/predictions/by-route/" + url.PathEscape(routeID) + ".json"
}
