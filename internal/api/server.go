// Package api assembles the HTTP surface of the portal: the messaging
// JSON API, the realtime socket and a health probe.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"portal/internal/auth"
	"portal/internal/database"
	"portal/internal/messaging"
	"portal/internal/realtime"
)

type Server struct {
	router *mux.Router
	db     *database.Database
}

func NewServer(
	db *database.Database,
	messages *messaging.JSONHandler,
	ws *realtime.WSHandler,
	am *auth.AuthMiddleware,
	rps int,
) *Server {
	router := mux.NewRouter()
	router.Use(Logger())

	server := &Server{
		router: router,
		db:     db,
	}
	server.setupRoutes(messages, ws, am, rps)
	return server
}

func (s *Server) setupRoutes(messages *messaging.JSONHandler, ws *realtime.WSHandler, am *auth.AuthMiddleware, rps int) {
	s.router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	// The socket is long-lived so it is kept out of the request limiter.
	s.router.Handle("/ws", ws)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.Use(RateLimitMiddleware(rps))
	v1.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	messaging.SetupJSONMessagingRoutes(v1, messages, am)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.db != nil {
		if sqlDB, err := s.db.DB.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
