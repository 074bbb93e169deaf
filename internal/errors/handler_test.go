package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(buf *bytes.Buffer) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(buf, nil)), false)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorToProblem(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/market/snapshot", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"canceled wrapped", fmt.Errorf("compute: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"max bytes", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"validation", ErrValidationFailed, http.StatusBadRequest, TypeValidation},
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, TypeInvalidRequest},
		{"media type", ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, TypeUnsupportedMedia},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{"websocket", ErrWebSocketUpgrade, http.StatusBadRequest, TypeWebSocket},
		{"parsing", NewParsingError("bad csv", nil), http.StatusUnprocessableEntity, TypeListingsFile},
		{"app not found", NewAppError(ErrTypeNotFound, "gone", nil), http.StatusNotFound, TypeNotFound},
		{"storage", NewStorageError("write", fmt.Errorf("disk")), http.StatusInternalServerError, TypeInternal},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, pd.Status)
			assert.Equal(t, tt.wantType, pd.Type)
			assert.Equal(t, "/api/v1/market/snapshot", pd.Instance)
		})
	}
}

func TestErrorToProblemHidesInternalDetail(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	pd := h.ErrorToProblem(NewStorageError("open /secret/path", nil), req)
	assert.NotContains(t, pd.Detail, "/secret/path")
}

func TestHandleError(t *testing.T) {
	var logs bytes.Buffer
	h := newTestHandler(&logs)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/market/snapshot", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-42"))
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewValidationErrors([]ValidationError{{Field: "vehicle.model_year", Message: "required"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "req-42", body["trace_id"])
	assert.Equal(t, CodeValidationFailed, body["error_code"])
	assert.Contains(t, body, "details")

	assert.Contains(t, logs.String(), `"level":"WARN"`)
	assert.Contains(t, logs.String(), "req-42")
}

func TestHandleErrorNil(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{})
	rec := httptest.NewRecorder()
	h.HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{})

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/market/params", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeMethodNotAllowed, body["type"])
	assert.True(t, strings.Contains(body["detail"].(string), "DELETE"))
}

func TestRecoveryMiddleware(t *testing.T) {
	var logs bytes.Buffer
	h := NewErrorHandler(slog.New(slog.NewJSONHandler(&logs, nil)), true)

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("engine exploded")
	})
	rec := httptest.NewRecorder()
	RecoveryMiddleware(h)(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "engine exploded", body["panic"])
	assert.Contains(t, body, "stack")
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestRecoveryMiddlewareRepanicsAbort(t *testing.T) {
	h := newTestHandler(&bytes.Buffer{})
	aborting := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		RecoveryMiddleware(h)(aborting).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
