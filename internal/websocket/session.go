package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apierrors "carpulse/internal/errors"
	"carpulse/internal/infrastructure"
	"carpulse/internal/services"
	api "carpulse/pkg/contracts/api/v1"
)

// Message outcomes recorded in websocket.messages
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
	outcomeDropped = "dropped"
)

// Session is one live kilometraje connection. Each text message is a slider
// event and gets exactly one reply, in order.
type Session struct {
	id      string
	traceID string
	conn    Connection
	server  *Server
	logger  *slog.Logger

	send     chan []byte
	done     chan struct{} // closed when the read pump exits
	quit     chan struct{} // closed to ask the write pump to say goodbye
	quitOnce sync.Once

	connectedAt time.Time
	received    int64
}

func newSession(server *Server, conn Connection, traceID string) *Session {
	id := uuid.New().String()
	if traceID == "" {
		traceID = id
	}
	logger := server.logger.With(slog.String("session_id", id))
	if addr := conn.RemoteAddr(); addr != nil {
		logger = logger.With(slog.String("remote_addr", addr.String()))
	}

	return &Session{
		id:          id,
		traceID:     traceID,
		conn:        conn,
		server:      server,
		logger:      logger,
		send:        make(chan []byte, server.opts.SendBuffer),
		done:        make(chan struct{}),
		quit:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

func (s *Session) context() context.Context {
	return infrastructure.WithTraceID(context.Background(), s.traceID)
}

// shutdown asks the session to close. Safe to call more than once.
func (s *Session) shutdown() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// readPump reads slider events until the peer goes away
func (s *Session) readPump() {
	opts := s.server.opts
	defer func() {
		close(s.done)
		s.server.unregister(s)
		_ = s.conn.Close()
		s.logger.InfoContext(s.context(), "websocket session closed",
			slog.Duration("duration", time.Since(s.connectedAt)),
			slog.Int64("messages_received", s.received))
		s.server.wg.Done()
	}()

	s.logger.InfoContext(s.context(), "websocket session opened")

	s.conn.SetReadLimit(opts.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(opts.PongWait))
	})

	for {
		messageType, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WarnContext(s.context(), "unexpected websocket close",
					slog.String("error", err.Error()))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		s.received++

		reply := s.handle(message)
		select {
		case s.send <- reply:
		default:
			s.server.metrics.RecordWebSocketMessage(s.context(), outcomeDropped)
			s.logger.WarnContext(s.context(), "send buffer full, dropping reply")
		}
	}
}

// handle turns one slider event into its encoded reply
func (s *Session) handle(message []byte) []byte {
	ctx := s.context()

	var msg api.LiveKilometrajeMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		s.server.metrics.RecordWebSocketMessage(ctx, outcomeInvalid)
		return encodeReply(api.LiveKilometrajeReply{Error: "invalid message: " + err.Error()})
	}
	if err := s.server.validator.ValidateStruct(&msg); err != nil {
		s.server.metrics.RecordWebSocketMessage(ctx, outcomeInvalid)
		return encodeReply(api.LiveKilometrajeReply{RequestID: msg.RequestID, Error: errorText(err)})
	}

	result, _, err := s.server.calc.Kilometraje(ctx, services.KilometrajeInput{
		Vehicle:            msg.Vehicle.Descriptor(),
		SelectedOdometerKm: msg.SelectedOdometerKm,
		BasePrice:          msg.BasePrice,
		Live:               true,
	})
	if err != nil {
		s.server.metrics.RecordWebSocketMessage(ctx, outcomeError)
		s.logger.ErrorContext(ctx, "live adjustment failed", slog.String("error", err.Error()))
		return encodeReply(api.LiveKilometrajeReply{RequestID: msg.RequestID, Error: "adjustment failed"})
	}

	s.server.metrics.RecordWebSocketMessage(ctx, outcomeOK)
	return encodeReply(api.LiveKilometrajeReply{RequestID: msg.RequestID, Adjustment: &result})
}

// writePump sends replies and keeps the connection alive with pings
func (s *Session) writePump() {
	opts := s.server.opts
	ticker := time.NewTicker(opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
		s.server.wg.Done()
	}()

	for {
		select {
		case reply := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				s.logger.DebugContext(s.context(), "websocket write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.DebugContext(s.context(), "websocket ping failed", slog.String("error", err.Error()))
				return
			}

		case <-s.quit:
			_ = s.conn.SetWriteDeadline(time.Now().Add(opts.WriteWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case <-s.done:
			return
		}
	}
}

// errorText flattens validation failures into one line
func errorText(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if details, ok := apiErr.Details.(apierrors.ValidationErrors); ok && len(details.Errors) > 0 {
			parts := make([]string, len(details.Errors))
			for i, fe := range details.Errors {
				parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
			}
			return strings.Join(parts, "; ")
		}
		return apiErr.Message
	}
	return err.Error()
}

func encodeReply(reply api.LiveKilometrajeReply) []byte {
	data, err := json.Marshal(reply)
	if err != nil {
		return []byte(`{"error":"encode reply"}`)
	}
	return data
}
