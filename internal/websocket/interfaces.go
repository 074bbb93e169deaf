package websocket

import (
	"context"
	"net"
	"time"

	"carpulse/internal/pricing"
	"carpulse/internal/services"
)

// Connection is the part of *websocket.Conn a session uses
type Connection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	RemoteAddr() net.Addr
}

// Calculator computes one kilometraje adjustment. services.PricingService
// implements it.
type Calculator interface {
	Kilometraje(ctx context.Context, in services.KilometrajeInput) (pricing.AdjustmentResult, string, error)
}
