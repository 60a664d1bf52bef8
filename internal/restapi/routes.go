package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (api *RestAPI) Router() *httprouter.Router {
	router := httprouter.New()
	api.SetRoutes(router)
	router.NotFound = http.HandlerFunc(api.sendNotFound)
	router.MethodNotAllowed = http.HandlerFunc(api.methodNotAllowedResponse)
	return router
}

func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodGet, "/routes.json", api.routesHandler)
	router.HandlerFunc(http.MethodGet, "/routes/:routeId/runs.json", api.runsHandler)
	router.HandlerFunc(http.MethodGet, "/routes/:routeId/runs/:runId/stops.json", api.stopsHandler)
	router.HandlerFunc(http.MethodGet, "/stops/:stopId/predictions.json", api.predictionsHandler)

	router.HandlerFunc(http.MethodGet, "/favorites.json", api.favoritesHandler)
	router.HandlerFunc(http.MethodPut, "/routes/:routeId/stops/:stopId/favorite", api.addFavoriteHandler)
	router.HandlerFunc(http.MethodDelete, "/routes/:routeId/stops/:stopId/favorite", api.removeFavoriteHandler)

	router.HandlerFunc(http.MethodGet, "/monitor.json", api.monitorHandler)

	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	router.HandlerFunc(http.MethodGet, "/healthz", api.healthHandler)
}
