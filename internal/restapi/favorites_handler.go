package restapi

import (
	"net/http"
	"strings"

	"github.com/neugierig/proximo/internal/models"
	"github.com/neugierig/proximo/internal/utils"
)

const maxStopNameLength = 200

func (api *RestAPI) favoritesHandler(w http.ResponseWriter, r *http.Request) {
	favorites, err := api.Favorites.List(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(favorites))
}

// addFavoriteHandler stars a (route, stop) pair. runId and stopName are
// optional query parameters; route and run names come from the name caches.
func (api *RestAPI) addFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	routeID := utils.ExtractIDFromParams(r, "routeId")
	stopID := utils.ExtractIDFromParams(r, "stopId")
	runID := r.URL.Query().Get("runId")
	stopName := strings.TrimSpace(r.URL.Query().Get("stopName"))

	fieldErrors := utils.ValidateIDs(map[string]string{"routeId": routeID, "stopId": stopID, "runId": runID}, "runId")
	if len(stopName) > maxStopNameLength {
		fieldErrors["stopName"] = append(fieldErrors["stopName"], "stop name too long (max 200 characters)")
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	favorite := models.Favorite{
		RouteID:   routeID,
		RouteName: api.RouteName(routeID),
		RunID:     runID,
		RunName:   api.RunName(routeID, runID),
		StopID:    stopID,
		StopName:  stopName,
	}
	if err := api.Favorites.Add(r.Context(), favorite); err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(favorite))
}

func (api *RestAPI) removeFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	routeID := utils.ExtractIDFromParams(r, "routeId")
	stopID := utils.ExtractIDFromParams(r, "stopId")
	if fieldErrors := utils.ValidateIDs(map[string]string{"routeId": routeID, "stopId": stopID}); len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	removed, err := api.Favorites.Remove(r.Context(), routeID, stopID)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	if !removed {
		api.sendNotFound(w, r)
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(nil))
}
