package server

import (
	"coin-market-service/internal/infrastructure/logging"
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
	endpoints  []string
}

// NewServer creates a new server instance. endpoints sólo se usan para el log de arranque.
// No hay WriteTimeout: cortaría los streams WebSocket de eventos.
func NewServer(handler http.Handler, port int, endpoints ...string) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		port:      port,
		endpoints: endpoints,
	}
}

// APIEndpoints lista las rutas de cmd/api
func APIEndpoints() []string {
	return []string{
		"GET    /health",
		"GET    /ready",
		"GET    /metrics",
		"GET    /api/v1/coins?currency=usd&per_page=50&page=1",
		"GET    /api/v1/coins/status",
		"GET    /api/v1/coins/{id}",
		"GET    /api/v1/coins/{id}/history?days=30",
		"GET    /api/v1/favorites",
		"DELETE /api/v1/favorites",
		"GET    /api/v1/favorites/{coinId}",
		"POST   /api/v1/favorites/{coinId}",
		"DELETE /api/v1/favorites/{coinId}",
		"POST   /api/v1/favorites/{coinId}/toggle",
		"GET    " + eventsPath + " (websocket)",
	}
}

// StoreEndpoints lista las rutas de cmd/favorites-store
func StoreEndpoints() []string {
	return []string{
		"GET    /health",
		"GET    /ready",
		"GET    /metrics",
		"GET    /favorites",
		"POST   /favorites?coinId=",
		"DELETE /favorites/{coinId}",
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"port": s.port,
	})

	if len(s.endpoints) > 0 {
		endpoints := make([]string, len(s.endpoints))
		for i, e := range s.endpoints {
			endpoints[i] = fmt.Sprintf("%s (port %d)", e, s.port)
		}
		logging.Info(ctx, "Available endpoints", logging.Fields{
			"endpoints": endpoints,
		})
	}

	return s.httpServer.ListenAndServe()
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logging.Info(ctx, "Stopping HTTP server gracefully", logging.Fields{
		"port": s.port,
	})

	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the configured port
func (s *Server) GetPort() int {
	return s.port
}
