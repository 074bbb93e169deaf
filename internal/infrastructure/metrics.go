package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PricingMetrics holds the application instruments
type PricingMetrics struct {
	// HTTP metrics
	HTTPRequests        metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Engine metrics
	Snapshots         metric.Int64Counter
	SnapshotDuration  metric.Float64Histogram
	ListingsDiscarded metric.Int64Counter
	KilometrajeFactor metric.Float64Histogram

	// WebSocket metrics
	WebSocketSessions metric.Int64UpDownCounter
	WebSocketMessages metric.Int64Counter
}

// NewPricingMetrics creates the application instruments on meter
func NewPricingMetrics(meter metric.Meter) (*PricingMetrics, error) {
	m := &PricingMetrics{}
	var err error

	if m.HTTPRequests, err = meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.Snapshots, err = meter.Int64Counter(
		"pricing.snapshots",
		metric.WithDescription("Market snapshots computed"),
	); err != nil {
		return nil, err
	}

	if m.SnapshotDuration, err = meter.Float64Histogram(
		"pricing.snapshot.duration",
		metric.WithDescription("Time spent computing a market snapshot"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.ListingsDiscarded, err = meter.Int64Counter(
		"pricing.listings.discarded",
		metric.WithDescription("Comparable listings dropped for an invalid price"),
	); err != nil {
		return nil, err
	}

	if m.KilometrajeFactor, err = meter.Float64Histogram(
		"pricing.kilometraje.factor",
		metric.WithDescription("Kilometraje adjustment factors handed out"),
		metric.WithExplicitBucketBoundaries(0.75, 0.85, 0.9, 0.95, 1, 1.05, 1.1, 1.15),
	); err != nil {
		return nil, err
	}

	if m.WebSocketSessions, err = meter.Int64UpDownCounter(
		"websocket.sessions",
		metric.WithDescription("Open live kilometraje sessions"),
	); err != nil {
		return nil, err
	}

	if m.WebSocketMessages, err = meter.Int64Counter(
		"websocket.messages",
		metric.WithDescription("Live kilometraje messages processed"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSnapshot records one computed market snapshot
func (m *PricingMetrics) RecordSnapshot(ctx context.Context, method, demand, competition string, discarded int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("demand", demand),
		attribute.String("competition", competition),
	)
	m.Snapshots.Add(ctx, 1, attrs)
	m.SnapshotDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if discarded > 0 {
		m.ListingsDiscarded.Add(ctx, int64(discarded))
	}
}

// RecordAdjustment records one kilometraje factor
func (m *PricingMetrics) RecordAdjustment(ctx context.Context, factor float64, source string) {
	if m == nil {
		return
	}
	m.KilometrajeFactor.Record(ctx, factor, metric.WithAttributes(attribute.String("source", source)))
}

// RecordHTTPRequest records one completed HTTP request
func (m *PricingMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequests.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordWebSocketSession moves the open session gauge by delta
func (m *PricingMetrics) RecordWebSocketSession(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketSessions.Add(ctx, delta)
}

// RecordWebSocketMessage counts one processed live message by outcome
func (m *PricingMetrics) RecordWebSocketMessage(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.WebSocketMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
