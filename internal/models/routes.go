package models

// Route is a transit line as published by the prediction API.
type Route struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

func NewRoute(id, displayName string) Route {
	return Route{
		ID:          id,
		DisplayName: displayName,
	}
}

func (r Route) String() string {
	return r.DisplayName
}

// Run is one direction/pattern of service on a route. Only runs flagged
// DisplayInUI are surfaced to the user.
type Run struct {
	ID          string `json:"id"`
	RouteID     string `json:"routeId"`
	DisplayName string `json:"displayName"`
	DisplayInUI bool   `json:"displayInUi"`
}

func NewRun(id, routeID, displayName string, displayInUI bool) Run {
	return Run{
		ID:          id,
		RouteID:     routeID,
		DisplayName: displayName,
		DisplayInUI: displayInUI,
	}
}

func (r Run) String() string {
	return r.DisplayName
}

// VisibleRuns returns the runs flagged for display, in their original order.
func VisibleRuns(runs []Run) []Run {
	visible := make([]Run, 0, len(runs))
	for _, run := range runs {
		if run.DisplayInUI {
			visible = append(visible, run)
		}
	}
	return visible
}
