package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"carpulse/internal/infrastructure"
	"carpulse/pkg/contracts"
)

// Health states
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// ReadinessProbe is a dependency the service needs before taking traffic
type ReadinessProbe interface {
	Ready() error
}

// SessionCounter reports open websocket sessions
type SessionCounter interface {
	ActiveSessions() int
}

// HealthService provides health check functionality
type HealthService struct {
	probes    map[string]ReadinessProbe
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. probes are checked by
// ReadinessCheck under their map key; sessions may be nil.
func NewHealthService(probes map[string]ReadinessProbe, sessions SessionCounter, logger *slog.Logger) *HealthService {
	logger = infrastructure.WithComponent(logger, "health_service")
	logger.Debug("health service initialized", slog.Int("probes", len(probes)))

	return &HealthService{
		probes:    probes,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck runs every probe. The service is ready only when all are.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  make(map[string]ServiceHealth, len(hs.probes)),
	}

	for name, probe := range hs.probes {
		if err := probe.Ready(); err != nil {
			status.Services[name] = ServiceHealth{Status: StatusNotReady, Message: err.Error()}
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "readiness probe failed",
				slog.String("probe", name),
				slog.String("error", err.Error()))
			continue
		}
		status.Services[name] = ServiceHealth{Status: StatusReady}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	runtimeInfo := map[string]interface{}{
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
	}
	if hs.sessions != nil {
		runtimeInfo["websocket_sessions"] = hs.sessions.ActiveSessions()
	}

	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime:   runtimeInfo,
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"api_version":  info.APIVersion,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   info.GoVersion,
		"os":           info.OS,
		"arch":         info.Architecture,
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}
