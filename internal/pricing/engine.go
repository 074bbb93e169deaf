package pricing

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Engine assembles market snapshots and kilometraje adjustments. It holds no
// mutable state after construction and is safe for concurrent use.
type Engine struct {
	params Params
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used to derive the current year
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a pricing engine with the given parameters
func NewEngine(params Params, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("validate pricing params: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		params: cloneParams(params),
		logger: logger.With(slog.String("component", "pricing_engine")),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Params returns a copy of the active parameters
func (e *Engine) Params() Params {
	return cloneParams(e.params)
}

// ReferenceYear is the year vehicle ages are measured against
func (e *Engine) ReferenceYear() int {
	if e.params.ReferenceYear > 0 {
		return e.params.ReferenceYear
	}
	return e.now().Year()
}

// VehicleAge returns the vehicle's age in whole years, never negative
func (e *Engine) VehicleAge(vehicle VehicleDescriptor) int {
	if vehicle.ModelYear <= 0 {
		return 0
	}
	return max(e.ReferenceYear()-vehicle.ModelYear, 0)
}

// ComputeMarketSnapshot derives every market statistic for the vehicle from
// its comparable listings. It never fails: an empty or fully invalid
// comparable set yields the fallback snapshot (zeroed statistics, nil
// quartiles and mode, low demand, low competition).
func (e *Engine) ComputeMarketSnapshot(comparables []ComparableListing, vehicle VehicleDescriptor) MarketSnapshot {
	filtered := FilterComparables(comparables)
	e.logWarnings(filtered, len(comparables))

	age := e.VehicleAge(vehicle)
	prices := filtered.Prices
	n := len(prices)
	if n == 0 {
		return e.fallbackSnapshot(age, filtered.Discarded)
	}

	mean := Mean(prices)
	sd := StdDev(prices, mean)
	cv := CoefficientOfVariation(sd, mean)
	minPrice, maxPrice := prices[0], prices[n-1]
	dispersion := Dispersion(minPrice, maxPrice, mean)

	snapshot := MarketSnapshot{
		AveragePrice:           RoundToUnit(mean, e.params.PriceRoundingUnit),
		AveragePriceRaw:        mean,
		PriceMin:               minPrice,
		PriceMax:               maxPrice,
		StdDev:                 sd,
		CoefficientOfVariation: cv,
		PriceDispersion:        dispersion,
		SampleSize:             n,
		DiscardedCount:         filtered.Discarded,
		AverageOdometerKm:      Mean(filtered.Odometers),
		VehicleAgeYears:        age,
	}

	if n >= e.params.MinQuartileSample {
		if q, err := ComputeQuartiles(prices); err == nil {
			snapshot.Quartiles = &q
		}
	}
	if mode, ok, err := Mode(prices); err == nil && ok {
		snapshot.Mode = &mode
	}

	snapshot.DemandLevel = ClassifyDemand(DemandInput{
		Count:    n,
		Brand:    vehicle.Brand,
		AgeYears: age,
	}, e.params)

	snapshot.CompetitionIntensity = ClassifyCompetition(CompetitionInput{
		Count:      n,
		Dispersion: dispersion,
		CV:         cv,
	}, e.params)
	snapshot.CompetitionLevel = snapshot.CompetitionIntensity.Level()

	snapshot.PriceDistribution = BuildDistribution(prices, e.params)

	e.logger.Debug("market snapshot computed",
		slog.Int("sample_size", n),
		slog.Int("discarded", filtered.Discarded),
		slog.String("method", snapshot.PriceDistribution.Method.String()),
		slog.String("demand", snapshot.DemandLevel.String()),
		slog.String("competition", snapshot.CompetitionIntensity.String()),
	)

	return snapshot
}

// ComputeKilometrajeFactor adjusts the comparables' average price for the
// selected odometer reading of the vehicle.
func (e *Engine) ComputeKilometrajeFactor(selectedOdometerKm float64, comparables []ComparableListing, vehicle VehicleDescriptor) AdjustmentResult {
	filtered := FilterComparables(comparables)
	basePrice := 0.0
	if len(filtered.Prices) > 0 {
		basePrice = RoundToUnit(Mean(filtered.Prices), e.params.PriceRoundingUnit)
	}
	return e.AdjustPrice(basePrice, selectedOdometerKm, vehicle)
}

// AdjustPrice applies the kilometraje factor to an explicit base price
func (e *Engine) AdjustPrice(basePrice, selectedOdometerKm float64, vehicle VehicleDescriptor) AdjustmentResult {
	return ComputeAdjustment(basePrice, selectedOdometerKm, e.VehicleAge(vehicle), e.params)
}

func (e *Engine) fallbackSnapshot(age, discarded int) MarketSnapshot {
	return MarketSnapshot{
		DemandLevel:          LevelLow,
		CompetitionLevel:     LevelLow,
		CompetitionIntensity: IntensityVeryLow,
		PriceDistribution:    emptyDistribution(),
		DiscardedCount:       discarded,
		VehicleAgeYears:      age,
	}
}

func (e *Engine) logWarnings(filtered FilterResult, total int) {
	if len(filtered.Warnings) == 0 {
		return
	}
	e.logger.Warn("ignored invalid comparable values",
		slog.Int("listings", total),
		slog.Int("discarded", filtered.Discarded),
		slog.Int("warnings", len(filtered.Warnings)),
		slog.String("first", filtered.Warnings[0].String()),
	)
}

func cloneParams(p Params) Params {
	p.KmSteps = slices.Clone(p.KmSteps)
	p.DeviationCuts = slices.Clone(p.DeviationCuts)
	p.FixedCuts = slices.Clone(p.FixedCuts)
	p.PopularBrands = slices.Clone(p.PopularBrands)
	return p
}
