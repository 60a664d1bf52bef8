package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/proximo"
)

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(logging.FromContext(r.Context()), "internal server error", err,
		slog.String("path", r.URL.Path))
	api.sendStatus(w, r, http.StatusInternalServerError, "internal server error")
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	response := struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		FieldErrors: fieldErrors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		api.Logger.Error("failed to encode validation error response", "error", err)
	}
}

// upstreamErrorResponse maps a failed API query onto a status code. Deadlines
// win over the error type so a timed-out fetch reads as a gateway timeout.
func (api *RestAPI) upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		logging.LogWarn(logger, "upstream timed out", err, slog.String("path", r.URL.Path))
		api.sendStatus(w, r, http.StatusGatewayTimeout, "upstream timed out")
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// The client went away; nobody reads this response.
		logger.Debug("request cancelled", slog.String("path", r.URL.Path))
	case proximo.IsFetchError(err):
		logging.LogWarn(logger, "upstream fetch failed", err, slog.String("path", r.URL.Path))
		api.sendStatus(w, r, http.StatusBadGateway, "upstream fetch failed")
	case proximo.IsDecodeError(err):
		logging.LogWarn(logger, "upstream response malformed", err, slog.String("path", r.URL.Path))
		api.sendStatus(w, r, http.StatusBadGateway, "upstream response malformed")
	default:
		api.serverErrorResponse(w, r, err)
	}
}
