package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neugierig/proximo/internal/appconf"
	"github.com/neugierig/proximo/internal/logging"
)

func TestCompressionMiddleware(t *testing.T) {
	largeResponse := strings.Repeat(`{"routeId": "N", "text": "3 minutes"}`, 200)
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(largeResponse))
	})

	t.Run("compresses response when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(testHandler).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

		reader, err := gzip.NewReader(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()

		decompressed, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, largeResponse, string(decompressed))
		assert.Less(t, recorder.Body.Len(), len(largeResponse))
	})

	t.Run("does not compress when gzip not accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		recorder := httptest.NewRecorder()

		CompressionMiddleware(testHandler).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, largeResponse, recorder.Body.String())
	})

	t.Run("does not compress small responses", func(t *testing.T) {
		small := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":200}`))
		})
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(small).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"code":200}`, recorder.Body.String())
	})
}

func TestCompressionConfig(t *testing.T) {
	config := DefaultCompressionConfig()
	assert.Equal(t, 1024, config.MinSize)
	assert.Equal(t, 6, config.Level)
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

	handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, logging.FromContext(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/stops/13913/predictions.json?routeId=N", nil)
	req.Header.Set("User-Agent", "test-client/1.0")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	output := buf.String()
	assert.Contains(t, output, `"msg":"http_request"`)
	assert.Contains(t, output, `"method":"GET"`)
	assert.Contains(t, output, `"path":"/stops/13913/predictions.json"`)
	assert.Contains(t, output, `"status":418`)
	assert.Contains(t, output, `"user_agent":"test-client/1.0"`)
	assert.Contains(t, output, `"component":"http_server"`)
}

func TestSecurityHeaders(t *testing.T) {
	handler := securityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/routes.json", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("OPTIONS", "/routes/N/stops/13913/favorite", nil)
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
}

func TestRateLimitMiddleware(t *testing.T) {
	assert.Nil(t, NewRateLimitMiddleware(0, time.Second))

	middleware := NewRateLimitMiddleware(3, time.Second)
	require.NotNil(t, middleware)
	defer middleware.Stop()

	handler := middleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/routes.json", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, request("10.0.0.1:1234").Code, "Request %d should be allowed", i+1)
	}
	rec := request("10.0.0.1:5678")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, request("10.0.0.2:1234").Code, "clients are limited independently")
}

func TestRateLimitIntegration(t *testing.T) {
	api, _ := createTestApi(t, func(cfg *appconf.Config) { cfg.RateLimit = 1 })

	resp, _ := getEndpoint(t, api, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, model := getEndpoint(t, api, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, model.Code)
}
