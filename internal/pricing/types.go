package pricing

import (
	"fmt"
	"strings"
)

// ComparableListing is one observed market data point for a similar vehicle
type ComparableListing struct {
	Price      float64 `json:"price"`
	OdometerKm float64 `json:"odometer_km"`
	ModelYear  int     `json:"model_year"`
	Brand      string  `json:"brand,omitempty"`
	Model      string  `json:"model,omitempty"`
	Location   string  `json:"location,omitempty"`
	SellerType string  `json:"seller_type,omitempty"`
}

// VehicleDescriptor describes the subject vehicle being priced
type VehicleDescriptor struct {
	Brand      string  `json:"brand"`
	Model      string  `json:"model"`
	ModelYear  int     `json:"model_year"`
	Trim       string  `json:"trim,omitempty"`
	OdometerKm float64 `json:"odometer_km"`
}

// Level is the three-step scale shared by demand and competition
type Level int

const (
	LevelLow Level = iota
	LevelModerate
	LevelHigh
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Level) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "low":
		*l = LevelLow
	case "moderate":
		*l = LevelModerate
	case "high":
		*l = LevelHigh
	default:
		return fmt.Errorf("unknown level %q", string(text))
	}
	return nil
}

// levelFromScore maps a demand score back onto the level ladder
func levelFromScore(score int) Level {
	switch {
	case score <= 0:
		return LevelLow
	case score == 1:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Quartiles holds the five cut points of a sorted price sequence.
// Q0 is the minimum and Q4 the maximum.
type Quartiles struct {
	Q0 float64 `json:"q0"`
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
	Q4 float64 `json:"q4"`
}

// IsOrdered reports whether Q0 <= Q1 <= Q2 <= Q3 <= Q4
func (q Quartiles) IsOrdered() bool {
	return q.Q0 <= q.Q1 && q.Q1 <= q.Q2 && q.Q2 <= q.Q3 && q.Q3 <= q.Q4
}

// MarketSnapshot is the complete set of derived statistics for one vehicle query
type MarketSnapshot struct {
	AveragePrice           float64           `json:"average_price"`
	AveragePriceRaw        float64           `json:"average_price_raw"`
	PriceMin               float64           `json:"price_min"`
	PriceMax               float64           `json:"price_max"`
	Quartiles              *Quartiles        `json:"quartiles"`
	Mode                   *float64          `json:"mode"`
	StdDev                 float64           `json:"std_dev"`
	CoefficientOfVariation float64           `json:"coefficient_of_variation"`
	PriceDispersion        float64           `json:"price_dispersion"`
	DemandLevel            Level             `json:"demand_level"`
	CompetitionLevel       Level             `json:"competition_level"`
	CompetitionIntensity   Intensity         `json:"competition_intensity"`
	PriceDistribution      PriceDistribution `json:"price_distribution"`

	SampleSize        int     `json:"sample_size"`
	DiscardedCount    int     `json:"discarded_count"`
	AverageOdometerKm float64 `json:"average_odometer_km"`
	VehicleAgeYears   int     `json:"vehicle_age_years"`
}

// IsFallback reports whether the snapshot was produced from an empty comparable set
func (s MarketSnapshot) IsFallback() bool {
	return s.SampleSize == 0
}

// AdjustmentResult is the outcome of an odometer-based price adjustment
type AdjustmentResult struct {
	Factor             float64 `json:"factor"`
	PercentAdjustment  float64 `json:"percent_adjustment"`
	ExpectedOdometerKm float64 `json:"expected_odometer_km"`
	DeltaKm            float64 `json:"delta_km"`
	BasePrice          float64 `json:"base_price"`
	AdjustedPrice      float64 `json:"adjusted_price"`
}
