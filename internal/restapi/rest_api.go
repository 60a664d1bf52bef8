package restapi

import (
	"net/http"
	"time"

	"github.com/neugierig/proximo/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(app *app.Application) *RestAPI {
	return &RestAPI{
		Application: app,
		rateLimiter: NewRateLimitMiddleware(app.Config.RateLimit, time.Second),
	}
}

// Handler returns the routed API wrapped in its middleware chain.
func (api *RestAPI) Handler() http.Handler {
	return api.Wrap(api.Router())
}

// Wrap applies the middleware chain to handler.
func (api *RestAPI) Wrap(handler http.Handler) http.Handler {
	if api.rateLimiter != nil {
		handler = api.rateLimiter.Handler(handler)
	}
	handler = CompressionMiddleware(handler)
	handler = securityHeaders(handler)
	handler = NewRequestLoggingMiddleware(api.Logger)(handler)
	return handler
}

// Stop releases the rate limiter's cleanup goroutine.
func (api *RestAPI) Stop() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}
