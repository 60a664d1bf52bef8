package restapi

import (
	"net/http"

	"github.com/neugierig/proximo/internal/models"
	"github.com/neugierig/proximo/internal/query"
	"github.com/neugierig/proximo/internal/utils"
)

// predictionsHandler renders a stop's predictions. Route and run names that
// are not cached yet come back as placeholders while their fetch runs; a
// changed namesVersion on a later request means more names are available.
func (api *RestAPI) predictionsHandler(w http.ResponseWriter, r *http.Request) {
	stopID := utils.ExtractIDFromParams(r, "stopId")
	routeID := r.URL.Query().Get("routeId")
	fieldErrors := utils.ValidateIDs(map[string]string{"stopId": stopID, "routeId": routeID}, "routeId")
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	predictions, err := query.Await(r.Context(), api.Runner, query.Predictions(stopID, routeID))
	if err != nil {
		api.upstreamErrorResponse(w, r, err)
		return
	}

	entry := models.StopPredictions{
		StopID:       stopID,
		Predictions:  api.PredictionRows(predictions),
		NamesVersion: api.NamesVersion(),
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

// monitorHandler returns the latest poll of the configured monitor stop.
func (api *RestAPI) monitorHandler(w http.ResponseWriter, r *http.Request) {
	if api.Monitor == nil {
		api.sendNotFound(w, r)
		return
	}

	predictions, updatedAt := api.Monitor.Latest()
	entry := struct {
		models.StopPredictions
		UpdatedAt int64 `json:"updatedAt"`
	}{
		StopPredictions: models.StopPredictions{
			StopID:       api.Config.MonitorStopID,
			Predictions:  api.PredictionRows(predictions),
			NamesVersion: api.NamesVersion(),
		},
	}
	if !updatedAt.IsZero() {
		entry.UpdatedAt = updatedAt.UnixMilli()
	}
	api.sendResponse(w, r, models.NewEntryResponse(entry))
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewOKResponse(map[string]interface{}{
		"baseUrl":         api.Client.BaseURL(),
		"queriesInFlight": api.Runner.InFlight(),
		"routeNames":      api.RouteNames.Len(),
		"runNames":        api.RunNames.Len(),
	}))
}
