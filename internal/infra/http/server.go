package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"outbound-email-engine/internal/infra/metrics"
)

// Server exposes /health and /metrics while a run is in progress. Batch
// runs poll the provider for minutes, so having live progress counters
// is worth a listener even in a one-shot CLI.
type Server struct {
	port   int
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(port int, logger *zerolog.Logger) *Server {
	return &Server{port: port, log: logger}
}

func (s *Server) Start() error {
	metrics.MustRegister()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}
	s.log.Info().Int("port", s.port).Msg("admin server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
