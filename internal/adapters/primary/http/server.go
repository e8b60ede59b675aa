// Package http serves the live preview and the JSON parse API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/cors"

	"github.com/fredcamaral/deckflow/internal/domain/entities"
	"github.com/fredcamaral/deckflow/internal/domain/ports"
)

// Server implements the HTTPServer interface
type Server struct {
	server       *http.Server
	listener     net.Listener
	connMgr      *ConnectionManager
	cancel       context.CancelFunc
	presenter    ports.PresentationService
	page         ports.PageRenderer
	styles       ports.SlideRenderer
	sanitizer    *bluemonday.Policy
	limiter      *rateLimiter
	config       entities.ServerConfig
	logger       ports.Logger
	monitor      ports.Monitor
	presentation *entities.ParsedPresentation
	mu           sync.RWMutex
	running      bool
}

// NewServer creates a preview server. Slide HTML is sanitized in API
// responses and the preview page when cfg.Render.Sanitize is set.
func NewServer(
	presenter ports.PresentationService,
	page ports.PageRenderer,
	styles ports.SlideRenderer,
	cfg *entities.Config,
	logger ports.Logger,
) *Server {
	if cfg == nil {
		panic("server config cannot be nil - provide a valid Config")
	}

	s := &Server{
		presenter: presenter,
		page:      page,
		styles:    styles,
		limiter:   newRateLimiter(requestsPerMinute, time.Minute),
		connMgr:   NewConnectionManager(),
		config:    cfg.Server,
		logger:    logger,
	}
	if cfg.Render.Sanitize {
		s.sanitizer = newSlideSanitizer()
	}

	return s
}

// SetPresentation replaces the presentation served to clients
func (s *Server) SetPresentation(p *entities.ParsedPresentation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presentation = p
}

// SetMonitor reports requests, parses and websocket clients to monitor.
// It must be called before Start.
func (s *Server) SetMonitor(monitor ports.Monitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitor = monitor
}

// GetPresentation returns the current presentation
func (s *Server) GetPresentation() *entities.ParsedPresentation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presentation
}

// Start binds the listener and serves in the background
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.connMgr.Run(runCtx)

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.GetReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.GetWriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	s.running = true

	go func() {
		s.logger.Info("HTTP server starting", "addr", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, useful when started on port 0
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop closes client connections and shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.cancel()
	s.running = false
	s.listener = nil
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the routed handler with middleware and CORS applied
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/slides", s.handleSlides).Methods(http.MethodGet)
	api.HandleFunc("/slides/at-line/{line:[0-9]+}", s.handleSlideAtLine).Methods(http.MethodGet)
	api.HandleFunc("/slides/{index:[0-9]+}", s.handleSlide).Methods(http.MethodGet)
	api.HandleFunc("/slides/{index:[0-9]+}/notes", s.handleSlideNotes).Methods(http.MethodGet)
	api.HandleFunc("/parse", s.handleParse).Methods(http.MethodPost)
	api.HandleFunc("/layout-rules", s.handleLayoutRules).Methods(http.MethodGet)
	api.HandleFunc("/layout-rules/css", s.handleLayoutRulesCSS).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/assets/highlight.css", s.handleHighlightCSS).Methods(http.MethodGet)
	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	// mux skips middleware when no route matched, so the 405 handler
	// carries its own headers
	notAllowed := securityHeadersMiddleware(http.HandlerFunc(s.handleMethodNotAllowed))
	router.MethodNotAllowedHandler = notAllowed
	api.MethodNotAllowedHandler = notAllowed

	router.Use(
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		securityHeadersMiddleware,
		s.limiter.middleware,
	)
	if s.monitor != nil {
		router.Use(metricsMiddleware(s.monitor))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return c.Handler(router)
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)
