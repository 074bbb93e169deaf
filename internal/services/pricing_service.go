package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	apierrors "carpulse/internal/errors"
	"carpulse/internal/infrastructure"
	"carpulse/internal/pricing"
)

// Base price sources reported with every adjustment
const (
	SourceExplicit = "explicit"
	SourceMarket   = "market"
	SourceLive     = "live"
)

// KilometrajeInput is one odometer adjustment request
type KilometrajeInput struct {
	Vehicle            pricing.VehicleDescriptor
	SelectedOdometerKm float64
	// BasePrice wins over Comparables when positive
	BasePrice   float64
	Comparables []pricing.ComparableListing
	// Live marks slider events from the websocket session
	Live bool
}

// PricingService runs the pricing engine for the transport layers and
// records telemetry around every computation
type PricingService struct {
	engine  *pricing.Engine
	metrics *infrastructure.PricingMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewPricingService creates a pricing service. metrics and tracer may be nil.
func NewPricingService(engine *pricing.Engine, metrics *infrastructure.PricingMetrics, tracer trace.Tracer, logger *slog.Logger) *PricingService {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	return &PricingService{
		engine:  engine,
		metrics: metrics,
		tracer:  tracer,
		logger:  infrastructure.WithComponent(logger, "pricing_service"),
	}
}

// Snapshot computes the market snapshot for a vehicle
func (s *PricingService) Snapshot(ctx context.Context, comparables []pricing.ComparableListing, vehicle pricing.VehicleDescriptor) (pricing.MarketSnapshot, error) {
	if s.engine == nil {
		return pricing.MarketSnapshot{}, ErrEngineUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "pricing.snapshot",
		trace.WithAttributes(
			attribute.Int("pricing.comparables", len(comparables)),
			attribute.String("vehicle.brand", vehicle.Brand),
			attribute.Int("vehicle.model_year", vehicle.ModelYear),
		),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		infrastructure.RecordError(ctx, err)
		return pricing.MarketSnapshot{}, fmt.Errorf("compute snapshot: %w", err)
	}

	start := time.Now()
	snapshot := s.engine.ComputeMarketSnapshot(comparables, vehicle)
	duration := time.Since(start)

	method := snapshot.PriceDistribution.Method.String()
	span.SetAttributes(
		attribute.Int("pricing.sample_size", snapshot.SampleSize),
		attribute.Int("pricing.discarded", snapshot.DiscardedCount),
		attribute.String("pricing.method", method),
		attribute.String("pricing.demand", snapshot.DemandLevel.String()),
		attribute.String("pricing.competition", snapshot.CompetitionLevel.String()),
	)
	s.metrics.RecordSnapshot(ctx, method, snapshot.DemandLevel.String(), snapshot.CompetitionLevel.String(),
		snapshot.DiscardedCount, duration)

	s.logger.InfoContext(ctx, "market snapshot computed",
		slog.String("brand", vehicle.Brand),
		slog.Int("model_year", vehicle.ModelYear),
		slog.Int("sample_size", snapshot.SampleSize),
		slog.Int("discarded", snapshot.DiscardedCount),
		slog.String("method", method),
		slog.Float64("average_price", snapshot.AveragePrice),
		slog.Duration("duration", duration),
	)

	return snapshot, nil
}

// Kilometraje computes an odometer-adjusted price. The result's source is
// SourceExplicit, SourceMarket or SourceLive.
func (s *PricingService) Kilometraje(ctx context.Context, in KilometrajeInput) (pricing.AdjustmentResult, string, error) {
	if s.engine == nil {
		return pricing.AdjustmentResult{}, "", ErrEngineUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "pricing.kilometraje",
		trace.WithAttributes(
			attribute.Float64("pricing.selected_odometer_km", in.SelectedOdometerKm),
			attribute.Int("vehicle.model_year", in.Vehicle.ModelYear),
		),
	)
	defer span.End()

	if err := ctx.Err(); err != nil {
		infrastructure.RecordError(ctx, err)
		return pricing.AdjustmentResult{}, "", fmt.Errorf("compute kilometraje: %w", err)
	}

	var (
		result pricing.AdjustmentResult
		source string
	)
	switch {
	case in.BasePrice > 0:
		source = SourceExplicit
		if in.Live {
			source = SourceLive
		}
		result = s.engine.AdjustPrice(in.BasePrice, in.SelectedOdometerKm, in.Vehicle)
	case len(pricing.FilterComparables(in.Comparables).Prices) > 0:
		source = SourceMarket
		result = s.engine.ComputeKilometrajeFactor(in.SelectedOdometerKm, in.Comparables, in.Vehicle)
	default:
		err := apierrors.NewAppValidationError(ErrNoBasePrice.Error())
		infrastructure.RecordError(ctx, err)
		return pricing.AdjustmentResult{}, "", fmt.Errorf("compute kilometraje: %w", err)
	}

	span.SetAttributes(
		attribute.String("pricing.base_source", source),
		attribute.Float64("pricing.factor", result.Factor),
	)
	s.metrics.RecordAdjustment(ctx, result.Factor, source)

	s.logger.DebugContext(ctx, "kilometraje adjustment computed",
		slog.String("source", source),
		slog.Float64("selected_odometer_km", in.SelectedOdometerKm),
		slog.Float64("expected_odometer_km", result.ExpectedOdometerKm),
		slog.Float64("factor", result.Factor),
		slog.Float64("adjusted_price", result.AdjustedPrice),
	)

	return result, source, nil
}

// Params returns the active engine parameters
func (s *PricingService) Params() pricing.Params {
	if s.engine == nil {
		return pricing.Params{}
	}
	return s.engine.Params()
}

// ReferenceYear returns the year vehicle ages are measured against
func (s *PricingService) ReferenceYear() int {
	if s.engine == nil {
		return 0
	}
	return s.engine.ReferenceYear()
}

// Ready reports whether the service can compute prices
func (s *PricingService) Ready() error {
	if s.engine == nil {
		return ErrEngineUnavailable
	}
	return s.engine.Params().Validate()
}
