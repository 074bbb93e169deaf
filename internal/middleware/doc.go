// Package middleware holds the chi middleware chain of the HTTP server:
// request ids, structured request logging, rate limiting, timeouts, CORS,
// security headers, body limits, JSON request validation and OpenTelemetry
// instrumentation.
//
// The recommended order is
//
//	RequestID → RealIP → OTelMiddleware → StructuredLogger → Recovery →
//	SecureHeaders → CORS → RateLimiter → (API group) Timeout, MaxBodySize,
//	ContentTypeValidator
package middleware
