package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"github.com/neugierig/proximo/internal/app"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

var dataTypes = []string{"route_names", "run_names", "favorites", "monitor", "config"}

type debugData struct {
	Title     string
	Pre       string
	DataTypes []string
}

type WebUI struct {
	*app.Application
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := debugTemplate.Execute(w, debugData{
		Title:     title,
		Pre:       spew.Sdump(data),
		DataTypes: dataTypes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	var title string

	switch r.URL.Query().Get("dataType") {
	case "route_names":
		data = webUI.RouteNames.Entries()
		title = "Name cache - Routes"
	case "run_names":
		data = webUI.RunNames.Entries()
		title = "Name cache - Runs"
	case "favorites":
		favorites, err := webUI.Favorites.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data = favorites
		title = "Favorites"
	case "monitor":
		if webUI.Monitor == nil {
			data = map[string]string{"error": "No monitor stop configured."}
		} else {
			predictions, updatedAt := webUI.Monitor.Latest()
			data = map[string]interface{}{
				"stopId":      webUI.Config.MonitorStopID,
				"routeId":     webUI.Config.MonitorRouteID,
				"updatedAt":   updatedAt,
				"predictions": predictions,
			}
		}
		title = "Prediction monitor"
	case "config":
		data = webUI.Config
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: route_names, run_names, favorites, monitor, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
