package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "CarPulse"
	AppVersion = "1.0.0"

	// Rate Limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// HTTP
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxBodyBytes   = 2 << 20 // 2MB, roughly 20k comparables

	// WebSocket
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketMaxMessageSize  = 64 << 10

	// Log Settings
	DefaultLogLevel = "info"
	DefaultLogFile  = "logs/carpulse.log"

	// Batch reports
	DefaultReportWorkers = 4
	DefaultReportDir     = "reports"
)
