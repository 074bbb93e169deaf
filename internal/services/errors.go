package services

import "errors"

// Pricing service errors
var (
	// ErrNoBasePrice is returned when a kilometraje request carries neither a
	// base price nor comparables to derive one from
	ErrNoBasePrice = errors.New("base price or comparables required")

	// ErrEngineUnavailable is returned when no engine has been configured
	ErrEngineUnavailable = errors.New("pricing engine not configured")
)
