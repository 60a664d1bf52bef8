package restapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/neugierig/proximo/internal/app"
	"github.com/neugierig/proximo/internal/appconf"
	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/models"
)

// upstreamBodies is the fake prediction API, keyed by request path.
var upstreamBodies = map[string]string{
	"/routes.json":                                 `{"items": [{"id": "F", "display_name": "F-Market & Wharves"}, {"id": "N", "display_name": "N-Judah"}]}`,
	"/routes/N.json":                               `{"id": "N", "display_name": "N-Judah"}`,
	"/routes/N/runs.json":                          `{"items": [{"id": "N_IB1", "route_id": "N", "display_name": "Inbound to Caltrain", "display_in_ui": true}, {"id": "N_XX", "route_id": "N", "display_name": "Hidden", "display_in_ui": false}]}`,
	"/routes/N/runs/N_IB1.json":                    `{"id": "N_IB1", "route_id": "N", "display_name": "Inbound to Caltrain", "display_in_ui": true}`,
	"/routes/N/runs/N_IB1/stops.json":              `{"items": [{"id": "13913", "display_name": "Judah St & 9th Ave"}]}`,
	"/routes/N OWL/runs.json":                      `{"items": []}`,
	"/stops/13913/predictions.json":                `{"items": [{"route_id": "N", "run_id": "N_IB1", "minutes": 1, "is_departing": false}]}`,
	"/stops/13913/predictions/by-route/N.json":     `{"items": [{"route_id": "N", "run_id": "N_IB1", "minutes": 0, "is_departing": true}]}`,
	"/stops/broken/predictions.json":               `{"items": [{"route_id": "N"}]}`,
	"/stops/13913/predictions/by-route/SLOW.json":  `{"items": []}`,
	"/stops/13913/predictions/by-route/ERROR.json": `{"items": []}`,
}

type upstream struct {
	mu    sync.Mutex
	paths []string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.paths = append(u.paths, r.URL.Path)
	u.mu.Unlock()

	switch r.URL.Path {
	case "/stops/13913/predictions/by-route/SLOW.json":
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
			return
		}
	case "/stops/13913/predictions/by-route/ERROR.json":
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	body, ok := upstreamBodies[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func (u *upstream) count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, p := range u.paths {
		if p == path {
			n++
		}
	}
	return n
}

// createTestApi creates a RestAPI backed by a fake upstream and an in-memory
// favorites database.
func createTestApi(t *testing.T, mutate func(*appconf.Config)) (*RestAPI, *upstream) {
	t.Helper()
	fake := &upstream{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := appconf.Config{
		Port:            4000,
		Env:             appconf.EnvFlagToEnvironment("test"),
		BaseURL:         server.URL,
		HTTPTimeout:     5 * time.Second,
		QueryTimeout:    500 * time.Millisecond,
		FavoritesDBPath: ":memory:",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	application, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	application.Start()
	t.Cleanup(application.Shutdown)

	api := NewRestAPI(application)
	t.Cleanup(api.Stop)
	return api, fake
}

// serveApiAndRetrieveEndpoint makes a request against the full handler chain
// and decodes the response model.
func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, method, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	req, err := http.NewRequest(method, server.URL+endpoint, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	return resp, response
}

func getEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	return serveApiAndRetrieveEndpoint(t, api, http.MethodGet, endpoint)
}

func dataField(t *testing.T, model models.ResponseModel, key string) interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	return data[key]
}
