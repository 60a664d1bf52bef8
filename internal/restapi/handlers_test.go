package restapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neugierig/proximo/internal/appconf"
	"github.com/neugierig/proximo/internal/names"
)

func TestRoutesHandler(t *testing.T) {
	api, _ := createTestApi(t, nil)

	resp, model := getEndpoint(t, api, "/routes.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, model.Code)
	assert.Equal(t, "OK", model.Text)
	assert.Equal(t, 2, model.Version)

	list, ok := dataField(t, model, "list").([]interface{})
	require.True(t, ok)
	require.Len(t, list, 2)
	route := list[1].(map[string]interface{})
	assert.Equal(t, "N", route["id"])
	assert.Equal(t, "N-Judah", route["displayName"])

	name, state := api.RouteNames.Lookup("N")
	assert.Equal(t, names.Resolved, state, "listing routes seeds the name cache")
	assert.Equal(t, "N-Judah", name)
}

func TestRunsHandlerFiltersHiddenRuns(t *testing.T) {
	api, _ := createTestApi(t, nil)

	resp, model := getEndpoint(t, api, "/routes/N/runs.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	list := dataField(t, model, "list").([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "N_IB1", list[0].(map[string]interface{})["id"])

	_, state := api.RunNames.Lookup("N_XX")
	assert.Equal(t, names.Absent, state)
}

func TestRunsHandlerEscapedRouteID(t *testing.T) {
	api, fake := createTestApi(t, nil)

	resp, model := getEndpoint(t, api, "/routes/N%20OWL/runs.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, dataField(t, model, "list"))
	assert.Equal(t, 1, fake.count("/routes/N OWL/runs.json"))
}

func TestStopsHandler(t *testing.T) {
	api, _ := createTestApi(t, nil)

	resp, model := getEndpoint(t, api, "/routes/N/runs/N_IB1/stops.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	list := dataField(t, model, "list").([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Judah St & 9th Ave", list[0].(map[string]interface{})["displayName"])
}

func TestPredictionsHandlerResolvesNamesOnce(t *testing.T) {
	api, fake := createTestApi(t, nil)

	resp, model := getEndpoint(t, api, "/stops/13913/predictions.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := dataField(t, model, "entry").(map[string]interface{})
	assert.Equal(t, "13913", entry["stopId"])
	rows := entry["predictions"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "N", row["routeName"], "route id is the placeholder")
	assert.Equal(t, "", row["runName"])
	assert.Equal(t, "1 minute", row["text"])

	assert.Eventually(t, func() bool {
		return api.NamesVersion() == 2
	}, 2*time.Second, 5*time.Millisecond)

	_, model = getEndpoint(t, api, "/stops/13913/predictions.json")
	entry = dataField(t, model, "entry").(map[string]interface{})
	row = entry["predictions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "N-Judah", row["routeName"])
	assert.Equal(t, "Inbound to Caltrain", row["runName"])
	assert.Equal(t, float64(2), entry["namesVersion"])

	assert.Equal(t, 1, fake.count("/routes/N.json"))
	assert.Equal(t, 1, fake.count("/routes/N/runs/N_IB1.json"))
}

func TestPredictionsHandlerByRoute(t *testing.T) {
	api, _ := createTestApi(t, nil)

	_, model := getEndpoint(t, api, "/stops/13913/predictions.json?routeId=N")
	entry := dataField(t, model, "entry").(map[string]interface{})
	rows := entry["predictions"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Departing", rows[0].(map[string]interface{})["text"])
}

func TestPredictionsHandlerErrors(t *testing.T) {
	api, _ := createTestApi(t, nil)

	tests := []struct {
		name     string
		endpoint string
		status   int
	}{
		{"upstream status", "/stops/13913/predictions.json?routeId=ERROR", http.StatusBadGateway},
		{"upstream not found", "/stops/99999/predictions.json", http.StatusBadGateway},
		{"malformed record", "/stops/broken/predictions.json", http.StatusBadGateway},
		{"timeout", "/stops/13913/predictions.json?routeId=SLOW", http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, model := getEndpoint(t, api, tt.endpoint)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.status, model.Code)
		})
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	api, _ := createTestApi(t, nil)

	resp, model := getEndpoint(t, api, "/nope.json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "resource not found", model.Text)

	resp, model = serveApiAndRetrieveEndpoint(t, api, http.MethodPost, "/routes.json")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, http.StatusMethodNotAllowed, model.Code)
}

func TestMonitorHandler(t *testing.T) {
	api, _ := createTestApi(t, nil)
	resp, _ := getEndpoint(t, api, "/monitor.json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	api, _ = createTestApi(t, func(cfg *appconf.Config) {
		cfg.MonitorStopID = "13913"
		cfg.MonitorRouteID = "N"
		cfg.MonitorInterval = time.Hour
	})

	assert.Eventually(t, func() bool {
		_, updatedAt := api.Monitor.Latest()
		return !updatedAt.IsZero()
	}, 2*time.Second, 5*time.Millisecond)

	resp, model := getEndpoint(t, api, "/monitor.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	entry := dataField(t, model, "entry").(map[string]interface{})
	assert.Equal(t, "13913", entry["stopId"])
	assert.NotZero(t, entry["updatedAt"])
	rows := entry["predictions"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "Departing", rows[0].(map[string]interface{})["text"])
}

func TestHealthHandler(t *testing.T) {
	api, _ := createTestApi(t, nil)
	resp, model := getEndpoint(t, api, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, api.Client.BaseURL(), dataField(t, model, "baseUrl"))
}
