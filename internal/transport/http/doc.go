// Package http implements the HTTP handlers of the CarPulse API. Handlers
// stay thin: they decode and validate the v1 contracts, call the services
// layer and render JSON, leaving every failure to the RFC 7807 error handler.
//
// Routes, relative to the /api/v1 group:
//
//	POST /market/snapshot     market statistics for a vehicle
//	POST /market/kilometraje  odometer-adjusted price
//	GET  /market/params       active engine parameters
//
// Health routes are mounted at the root:
//
//	GET /health, /health/live, /health/ready, /version
package http
