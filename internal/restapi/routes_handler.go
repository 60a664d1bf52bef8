package restapi

import (
	"net/http"

	"github.com/neugierig/proximo/internal/models"
	"github.com/neugierig/proximo/internal/query"
	"github.com/neugierig/proximo/internal/utils"
)

// routesHandler lists every route. The names it returns seed the route name
// cache so later prediction rows need no fetch.
func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	routes, err := query.Await(r.Context(), api.Runner, query.Routes())
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}

	for _, route := range routes {
		api.RouteNames.Seed(route.ID, route.DisplayName)
	}

	api.sendResponse(w, r, models.NewListResponse(routes))
}

// runsHandler lists the displayable runs of a route and seeds the run name
// cache with them.
func (api *RestAPI) runsHandler(w http.ResponseWriter, r *http.Request) {
	routeID := utils.ExtractIDFromParams(r, "routeId")
	if fieldErrors := utils.ValidateIDs(map[string]string{"routeId": routeID}); len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	runs, err := query.Await(r.Context(), api.Runner, query.Runs(routeID))
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}

	for _, run := range runs {
		api.RunNames.Seed(run.ID, run.DisplayName)
	}

	api.sendResponse(w, r, models.NewListResponse(runs))
}

func (api *RestAPI) stopsHandler(w http.ResponseWriter, r *http.Request) {
	routeID := utils.ExtractIDFromParams(r, "routeId")
	runID := utils.ExtractIDFromParams(r, "runId")
	if fieldErrors := utils.ValidateIDs(map[string]string{"routeId": routeID, "runId": runID}); len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	stops, err := query.Await(r.Context(), api.Runner, query.Stops(routeID, runID))
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(stops))
}
