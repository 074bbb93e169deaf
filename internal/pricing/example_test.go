package pricing_test

import (
	"fmt"
	"log/slog"
	"os"

	"carpulse/internal/pricing"
)

// Example_marketSnapshot prices a three year old vehicle against sixteen comparables
func Example_marketSnapshot() {
	params := pricing.DefaultParams()
	params.ReferenceYear = 2024

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	engine, err := pricing.NewEngine(params, logger)
	if err != nil {
		fmt.Println(err)
		return
	}

	comparables := make([]pricing.ComparableListing, 16)
	for i := range comparables {
		comparables[i] = pricing.ComparableListing{
			Price:      300000 + float64(i)*12500,
			OdometerKm: 45000,
			ModelYear:  2021,
		}
	}
	vehicle := pricing.VehicleDescriptor{Brand: "Toyota", Model: "RAV4", ModelYear: 2021}

	snapshot := engine.ComputeMarketSnapshot(comparables, vehicle)
	fmt.Printf("average: %.0f\n", snapshot.AveragePrice)
	fmt.Printf("method: %s\n", snapshot.PriceDistribution.Method)
	fmt.Printf("demand: %s, competition: %s\n", snapshot.DemandLevel, snapshot.CompetitionIntensity.Label())

	adj := engine.ComputeKilometrajeFactor(68000, comparables, vehicle)
	fmt.Printf("factor: %.2f, adjusted: %.0f\n", adj.Factor, adj.AdjustedPrice)

	// Output:
	// average: 393800
	// method: quartile
	// demand: high, competition: moderada
	// factor: 0.90, adjusted: 354420
}
