package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "carpulse/internal/errors"
	"carpulse/internal/infrastructure"
	"carpulse/internal/middleware"
	"carpulse/internal/pricing"
	"carpulse/internal/services"
	api "carpulse/pkg/contracts/api/v1"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	logger := infrastructure.NewLoggerWithWriter(&bytes.Buffer{}, slog.LevelDebug)

	params := pricing.DefaultParams()
	params.ReferenceYear = 2024
	engine, err := pricing.NewEngine(params, logger)
	require.NoError(t, err)

	ws := NewServer(
		services.NewPricingService(engine, nil, nil, logger),
		middleware.NewValidator(logger),
		apierrors.NewErrorHandler(logger, false),
		nil,
		opts,
		logger,
	)
	ts := httptest.NewServer(ws)
	t.Cleanup(func() {
		_ = ws.Close(context.Background())
		ts.Close()
	})
	return ws, ts
}

func dial(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, payload string) api.LiveKilometrajeReply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var reply api.LiveKilometrajeReply
	require.NoError(t, json.Unmarshal(data, &reply))
	return reply
}

const sliderVehicle = `{"brand":"Toyota","model":"Corolla","model_year":2020}`

func TestLiveKilometraje(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts, nil)

	// 4 years old: 60000 km expected
	tests := []struct {
		odometer   string
		wantFactor float64
		wantPrice  float64
	}{
		{"60000", 1.00, 400000},
		{"90000", 0.90, 360000},
		{"20000", 1.15, 460000},
		{"250000", 0.85, 340000},
	}

	for i, tt := range tests {
		reply := roundTrip(t, conn, `{"request_id":"r`+tt.odometer+`","vehicle":`+sliderVehicle+
			`,"selected_odometer_km":`+tt.odometer+`,"base_price":400000}`)

		require.Empty(t, reply.Error, "event %d", i)
		require.NotNil(t, reply.Adjustment)
		assert.Equal(t, "r"+tt.odometer, reply.RequestID)
		assert.InDelta(t, tt.wantFactor, reply.Adjustment.Factor, 1e-9)
		assert.InDelta(t, tt.wantPrice, reply.Adjustment.AdjustedPrice, 1e-6)
	}
}

func TestLiveKilometrajeRejectsBadMessages(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	conn := dial(t, ts, nil)

	reply := roundTrip(t, conn, `not json`)
	assert.Contains(t, reply.Error, "invalid message")
	assert.Nil(t, reply.Adjustment)

	reply = roundTrip(t, conn, `{"request_id":"x","vehicle":`+sliderVehicle+`,"selected_odometer_km":1000,"base_price":0}`)
	assert.Equal(t, "x", reply.RequestID)
	assert.Contains(t, reply.Error, "base_price")

	// the session survives bad input
	reply = roundTrip(t, conn, `{"vehicle":`+sliderVehicle+`,"selected_odometer_km":60000,"base_price":100}`)
	assert.Empty(t, reply.Error)
}

func TestActiveSessions(t *testing.T) {
	ws, ts := newTestServer(t, Options{})

	conn := dial(t, ts, nil)
	require.Eventually(t, func() bool { return ws.ActiveSessions() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	require.Eventually(t, func() bool { return ws.ActiveSessions() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestCloseSendsGoingAway(t *testing.T) {
	ws, ts := newTestServer(t, Options{})
	conn := dial(t, ts, nil)
	require.Eventually(t, func() bool { return ws.ActiveSessions() == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	closed := make(chan error, 1)
	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		closed <- err
	}()

	require.NoError(t, ws.Close(ctx))
	assert.True(t, websocket.IsCloseError(<-closed, websocket.CloseGoingAway))
	assert.ErrorIs(t, ws.Ready(), ErrServerClosed)
	assert.Zero(t, ws.ActiveSessions())

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCheckOrigin(t *testing.T) {
	_, ts := newTestServer(t, Options{AllowedOrigins: []string{"https://app.example.com"}})
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, apierrors.ErrWebSocketUpgrade.StatusCode, "shared upgrade error must not be mutated")

	conn := dial(t, ts, http.Header{"Origin": []string{"https://app.example.com"}})
	reply := roundTrip(t, conn, `{"vehicle":`+sliderVehicle+`,"selected_odometer_km":60000,"base_price":100}`)
	assert.Empty(t, reply.Error)
}

func TestPlainHTTPRequestIsRejected(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, apierrors.TypeWebSocket, problem["type"])
	assert.Equal(t, apierrors.CodeWebSocketUpgrade, problem["error_code"])
	assert.Equal(t, apierrors.ErrWebSocketUpgrade.Message, problem["detail"])
	assert.NotEmpty(t, problem["details"])
	assert.Nil(t, apierrors.ErrWebSocketUpgrade.Details)
}

func TestErrorText(t *testing.T) {
	err := apierrors.NewValidationErrors([]apierrors.ValidationError{
		{Field: "vehicle.brand", Message: "brand is required"},
		{Field: "base_price", Message: "base_price must be greater than 0"},
	})
	assert.Equal(t, "vehicle.brand: brand is required; base_price: base_price must be greater than 0", errorText(err))
	assert.Equal(t, "Rate limit exceeded", errorText(apierrors.ErrRateLimitExceeded))
}
