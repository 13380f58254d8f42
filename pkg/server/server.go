// Package server exposes the indexer's /metrics and /healthz endpoints on
// the address configured under server.metrics_addr.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/nftindexer/aptos-marketplace-indexer/pkg/database"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/metrics"
)

// Server wraps an http.Server serving observability endpoints.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds a Server bound to addr. db may be nil (e.g. in testing mode),
// in which case /healthz always reports healthy.
func New(addr string, db *database.Client, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[Server] ", log.LstdFlags)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", healthzHandler(db))

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux},
		logger:     logger,
	}
}

func healthzHandler(db *database.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db == nil {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]bool{"healthy": true})
			return
		}

		status, err := db.Health(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(status)
	}
}

// Start begins serving in the background. A listen error other than a
// clean Shutdown is logged fatally, matching the failure mode of the rest
// of the process.
func (s *Server) Start() {
	go func() {
		s.logger.Printf("listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatalf("server failed: %v", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
