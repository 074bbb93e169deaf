package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"carpulse/internal/config"
	apierrors "carpulse/internal/errors"
	"carpulse/internal/infrastructure"
	"carpulse/internal/middleware"
)

// ErrServerClosed is returned by Ready once Close has been called
var ErrServerClosed = errors.New("websocket server closed")

// Options tunes the live kilometraje sessions
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingPeriod      time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	MaxMessageSize  int64
	SendBuffer      int
	// AllowedOrigins limits browser origins. Empty or "*" allows any origin.
	AllowedOrigins []string
}

// OptionsFrom builds session options from the websocket and security configuration
func OptionsFrom(cfg config.WebSocketConfig, allowedOrigins []string) Options {
	return Options{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		PingPeriod:      cfg.PingPeriod,
		PongWait:        cfg.PongWait,
		MaxMessageSize:  cfg.MaxMessageSize,
		AllowedOrigins:  allowedOrigins,
	}
}

func (o Options) withDefaults() Options {
	if o.PingPeriod <= 0 {
		o.PingPeriod = config.WebSocketPingPeriod
	}
	if o.PongWait <= o.PingPeriod {
		o.PongWait = o.PingPeriod * 2
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = config.WebSocketMaxMessageSize
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 16
	}
	return o
}

// Server upgrades HTTP requests to live kilometraje sessions and tracks them
// until they end
type Server struct {
	upgrader     websocket.Upgrader
	calc         Calculator
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	metrics      *infrastructure.PricingMetrics
	opts         Options
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a websocket server. metrics may be nil.
func NewServer(calc Calculator, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler,
	metrics *infrastructure.PricingMetrics, opts Options, logger *slog.Logger) *Server {
	opts = opts.withDefaults()
	s := &Server{
		calc:         calc,
		validator:    validator,
		errorHandler: errorHandler,
		metrics:      metrics,
		opts:         opts,
		logger:       infrastructure.WithComponent(logger, "websocket"),
		sessions:     make(map[string]*Session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin:     s.checkOrigin,
		Error:           s.upgradeError,
	}
	return s
}

// ServeHTTP handles GET /ws/kilometraje
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := s.Ready(); err != nil {
		s.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgradeError already answered the request
		return
	}

	session := newSession(s, conn, infrastructure.GetTraceID(r.Context()))
	if !s.register(session) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(s.opts.WriteWait))
		_ = conn.Close()
		return
	}

	go session.writePump()
	go session.readPump()
}

// ActiveSessions returns the number of open sessions
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Ready reports whether the server accepts new sessions
func (s *Server) Ready() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	return nil
}

// Close stops accepting sessions, asks every open session to close and waits
// for them to finish or for ctx to expire
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	open := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		open = append(open, session)
	}
	s.mu.Unlock()

	for _, session := range open {
		session.shutdown()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.InfoContext(ctx, "websocket sessions closed", slog.Int("sessions", len(open)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) register(session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.sessions[session.id] = session
	s.wg.Add(2) // read and write pumps
	s.metrics.RecordWebSocketSession(context.Background(), 1)
	return true
}

func (s *Server) unregister(session *Session) {
	s.mu.Lock()
	if _, ok := s.sessions[session.id]; ok {
		delete(s.sessions, session.id)
		s.metrics.RecordWebSocketSession(context.Background(), -1)
	}
	s.mu.Unlock()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	s.logger.WarnContext(r.Context(), "websocket upgrade failed",
		slog.Int("status", status),
		slog.String("error", reason.Error()),
		slog.String("origin", r.Header.Get("Origin")))

	apiErr := apierrors.ErrWebSocketUpgrade.WithDetails(reason.Error())
	apiErr.StatusCode = status
	s.errorHandler.HandleError(w, r, apiErr)
}
