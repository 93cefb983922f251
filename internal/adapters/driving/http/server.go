package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
	"github.com/custodia-labs/kbchat-core/internal/runtime"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	model      runtime.ModelConfig

	// Services
	accessService driving.AccessService
	chatService   driving.ChatService
	directory     driving.DirectoryService
	resolver      driving.ResolverService

	// Infrastructure
	assistant Pinger // remote service health check
	counter   Pinger // quota backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	model runtime.ModelConfig,
	accessService driving.AccessService,
	chatService driving.ChatService,
	directory driving.DirectoryService,
	resolver driving.ResolverService,
	assistant Pinger,
	counter Pinger, // can be nil
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		model:         model,
		accessService: accessService,
		chatService:   chatService,
		directory:     directory,
		resolver:      resolver,
		assistant:     assistant,
		counter:       counter,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // chat requests wait on assistant runs
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	gate := NewGateMiddleware(s.accessService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Gate endpoints (public)
	s.router.HandleFunc("POST /api/v1/gate/admin", s.handleGateAdmin)
	s.router.HandleFunc("POST /api/v1/gate/guest", s.handleGateGuest)

	// Collection endpoints
	s.router.Handle("GET /api/v1/collections",
		gate.Authenticate(http.HandlerFunc(s.handleListCollections)))
	s.router.Handle("GET /api/v1/collections/{id}/documents",
		gate.Authenticate(http.HandlerFunc(s.handleListDocuments)))

	// Session endpoints
	s.router.Handle("POST /api/v1/session/collection",
		gate.Authenticate(http.HandlerFunc(s.handleSelectCollection)))
	s.router.Handle("GET /api/v1/session/history",
		gate.Authenticate(http.HandlerFunc(s.handleHistory)))
	s.router.Handle("POST /api/v1/session/reset",
		gate.Authenticate(http.HandlerFunc(s.handleResetSession)))

	// Chat endpoints
	s.router.Handle("POST /api/v1/chat",
		gate.Authenticate(http.HandlerFunc(s.handleChat)))
	s.router.Handle("GET /api/v1/status",
		gate.Authenticate(http.HandlerFunc(s.handleStatus)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
