// Package api contains the HTTP and websocket contracts of CarPulse.
// Version v1 represents the current stable API version.
package api

import (
	"carpulse/internal/pricing"
)

// Vehicle describes the vehicle being priced
type Vehicle struct {
	Brand      string  `json:"brand" validate:"required,max=64"`
	Model      string  `json:"model" validate:"max=64"`
	ModelYear  int     `json:"model_year" validate:"required,modelyear"`
	Trim       string  `json:"trim,omitempty" validate:"max=64"`
	OdometerKm float64 `json:"odometer_km" validate:"gte=0"`
}

// Descriptor converts the contract into the engine's vehicle descriptor
func (v Vehicle) Descriptor() pricing.VehicleDescriptor {
	return pricing.VehicleDescriptor{
		Brand:      v.Brand,
		Model:      v.Model,
		ModelYear:  v.ModelYear,
		Trim:       v.Trim,
		OdometerKm: v.OdometerKm,
	}
}

// Comparable is one market listing supplied by the caller. Prices are not
// validated here: the engine drops non-positive or non-finite prices and
// reports them as discarded.
type Comparable struct {
	Price      float64 `json:"price"`
	OdometerKm float64 `json:"odometer_km"`
	ModelYear  int     `json:"model_year"`
	Brand      string  `json:"brand,omitempty"`
	Model      string  `json:"model,omitempty"`
	Location   string  `json:"location,omitempty"`
	SellerType string  `json:"seller_type,omitempty"`
}

// Listings converts contract comparables into engine listings
func Listings(comparables []Comparable) []pricing.ComparableListing {
	out := make([]pricing.ComparableListing, len(comparables))
	for i, c := range comparables {
		out[i] = pricing.ComparableListing{
			Price:      c.Price,
			OdometerKm: c.OdometerKm,
			ModelYear:  c.ModelYear,
			Brand:      c.Brand,
			Model:      c.Model,
			Location:   c.Location,
			SellerType: c.SellerType,
		}
	}
	return out
}

// MarketSnapshotRequest asks for the market statistics of a vehicle.
// An empty comparables list is valid and yields the fallback snapshot.
type MarketSnapshotRequest struct {
	Vehicle     Vehicle      `json:"vehicle"`
	Comparables []Comparable `json:"comparables" validate:"max=5000"`
}

// KilometrajeRequest asks for an odometer-adjusted price. BasePrice wins over
// comparables when both are supplied.
type KilometrajeRequest struct {
	Vehicle            Vehicle      `json:"vehicle"`
	SelectedOdometerKm float64      `json:"selected_odometer_km" validate:"gte=0,lte=2000000"`
	BasePrice          float64      `json:"base_price,omitempty" validate:"gte=0"`
	Comparables        []Comparable `json:"comparables,omitempty" validate:"max=5000"`
}

// LiveKilometrajeMessage is one slider event on the live kilometraje websocket
type LiveKilometrajeMessage struct {
	RequestID          string  `json:"request_id,omitempty" validate:"max=64"`
	Vehicle            Vehicle `json:"vehicle"`
	SelectedOdometerKm float64 `json:"selected_odometer_km" validate:"gte=0,lte=2000000"`
	BasePrice          float64 `json:"base_price" validate:"gt=0"`
}
