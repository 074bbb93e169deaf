package api

import (
	"time"

	"carpulse/internal/pricing"
)

// MarketSnapshotResponse wraps a computed snapshot
type MarketSnapshotResponse struct {
	Snapshot   pricing.MarketSnapshot `json:"snapshot"`
	Fallback   bool                   `json:"fallback"`
	ComputedAt time.Time              `json:"computed_at"`
}

// KilometrajeResponse wraps an adjustment result
type KilometrajeResponse struct {
	Adjustment pricing.AdjustmentResult `json:"adjustment"`
	// BaseSource is "explicit" when the caller supplied the base price and
	// "market" when it was derived from comparables.
	BaseSource string `json:"base_source"`
}

// LiveKilometrajeReply answers one LiveKilometrajeMessage
type LiveKilometrajeReply struct {
	RequestID  string                    `json:"request_id,omitempty"`
	Adjustment *pricing.AdjustmentResult `json:"adjustment,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

// ParamsResponse exposes the active engine parameters
type ParamsResponse struct {
	Params        pricing.Params `json:"params"`
	ReferenceYear int            `json:"reference_year"`
}
