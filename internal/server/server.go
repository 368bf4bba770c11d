// Package server implements the Shtack HTTP API: a two-stage command
// workflow in which every step is authorized by a single-use capability
// path handed out by the previous step.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Chargde-Porcupine/SHtack/internal/audit"
	"github.com/Chargde-Porcupine/SHtack/internal/clog"
	"github.com/Chargde-Porcupine/SHtack/internal/queue"
	"github.com/Chargde-Porcupine/SHtack/internal/token"
)

// DefaultPort is the port the API listens on unless configured otherwise.
const DefaultPort = 8000

// Default timeouts applied when the corresponding field is zero.
const (
	DefaultReadHeaderTimeout = 30 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Server serves the Shtack API.
type Server struct {
	// Addr is the address to listen on (e.g., ":8000").
	Addr string

	// Queue holds staged commands. Shared by every workflow instance.
	Queue *queue.Queue

	// Capabilities tracks the live minted push and pop paths.
	Capabilities *token.Registry

	// Mint produces tokens for new capabilities. Defaults to token.Generate.
	Mint token.Generator

	// AuditLogger logs workflow transitions. If nil, no audit logging is performed.
	AuditLogger *audit.Logger

	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds how long Run waits for in-flight requests.
	ShutdownTimeout time.Duration

	now func() time.Time

	server   *http.Server
	listener net.Listener
	serveErr chan error
	mu       sync.Mutex
	running  bool
}

// NewServer creates a new API server around the given queue and capability
// registry. The queue and registry are required; auditLogger may be nil.
func NewServer(q *queue.Queue, caps *token.Registry, auditLogger *audit.Logger) *Server {
	return &Server{
		Addr:              fmt.Sprintf(":%d", DefaultPort),
		Queue:             q,
		Capabilities:      caps,
		Mint:              token.Generate,
		AuditLogger:       auditLogger,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
		now:               time.Now,
	}
}

// Handler returns the complete HTTP handler, including middleware.
// Useful for serving through httptest or an externally managed listener.
func (s *Server) Handler() http.Handler {
	if s.Queue == nil {
		s.Queue = queue.New()
	}
	if s.Capabilities == nil {
		s.Capabilities = token.NewRegistry()
	}
	if s.Mint == nil {
		s.Mint = token.Generate
	}
	if s.now == nil {
		s.now = time.Now
	}
	return RequestIDMiddleware(s.routes())
}

// Start begins accepting connections.
// Returns an error if the server is already running or fails to start.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}

	readHeaderTimeout := s.ReadHeaderTimeout
	if readHeaderTimeout == 0 {
		readHeaderTimeout = DefaultReadHeaderTimeout
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          clog.StdLogger(clog.LevelWarn),
	}
	s.serveErr = make(chan error, 1)
	s.running = true

	srv, errc := s.server, s.serveErr
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	return s.server.Shutdown(ctx)
}

// Run starts the server and blocks until ctx is cancelled or serving fails.
// On cancellation it shuts down gracefully, waiting up to ShutdownTimeout
// for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	clog.Info("listening on %s", s.ListenAddr())

	s.mu.Lock()
	errc := s.serveErr
	s.mu.Unlock()

	select {
	case <-ctx.Done():
	case err, ok := <-errc:
		if ok {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return fmt.Errorf("serve: %w", err)
		}
	}

	timeout := s.ShutdownTimeout
	if timeout == 0 {
		timeout = DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clog.Info("shutting down")
	if err := s.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ListenAddr returns the actual address the server is listening on.
// This is useful when the server was started with port 0 (random port).
// Returns empty string if the server is not running.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
