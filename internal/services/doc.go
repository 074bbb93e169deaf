// Package services implements the business layer between the transports and
// the pricing engine.
//
// PricingService wraps pricing.Engine with tracing spans, metrics and
// structured logging. Both the HTTP handlers and the live kilometraje
// websocket go through it, so every computation is observed the same way.
//
// HealthService answers the liveness, readiness and version endpoints.
// Readiness is the conjunction of the registered ReadinessProbe values:
//
//	health := services.NewHealthService(map[string]services.ReadinessProbe{
//	    "pricing_engine": pricingService,
//	}, sessions, logger)
package services
