package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"carpulse/pkg/contracts"
)

type probeFunc func() error

func (f probeFunc) Ready() error { return f() }

type fixedSessions int

func (s fixedSessions) ActiveSessions() int { return int(s) }

func TestHealthCheck(t *testing.T) {
	hs := NewHealthService(nil, nil, slog.Default())

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, contracts.Version, status.Version)
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name   string
		probes map[string]ReadinessProbe
		want   string
	}{
		{"no probes", nil, StatusReady},
		{"all ready", map[string]ReadinessProbe{"pricing_engine": probeFunc(func() error { return nil })}, StatusReady},
		{
			"one failing",
			map[string]ReadinessProbe{
				"pricing_engine": probeFunc(func() error { return nil }),
				"websocket":      probeFunc(func() error { return errors.New("closed") }),
			},
			StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := NewHealthService(tt.probes, nil, slog.Default()).ReadinessCheck(context.Background())
			assert.Equal(t, tt.want, status.Status)
			assert.Len(t, status.Services, len(tt.probes))
		})
	}
}

func TestReadinessCheckReportsMessage(t *testing.T) {
	hs := NewHealthService(map[string]ReadinessProbe{
		"pricing_engine": probeFunc(func() error { return ErrEngineUnavailable }),
	}, nil, slog.Default())

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, ErrEngineUnavailable.Error(), status.Services["pricing_engine"].Message)
}

func TestLivenessCheck(t *testing.T) {
	status := NewHealthService(nil, fixedSessions(3), slog.Default()).LivenessCheck(context.Background())
	assert.Equal(t, StatusAlive, status.Status)
	assert.Equal(t, 3, status.Runtime["websocket_sessions"])
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestVersion(t *testing.T) {
	info := NewHealthService(nil, nil, slog.Default()).Version()
	assert.Equal(t, contracts.Version, info["version"])
	assert.Equal(t, contracts.APIVersion, info["api_version"])
}
