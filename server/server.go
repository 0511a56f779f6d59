// Package server mounts the hiring API on a real listener.
//
// Reads and plain writes are answered by the gateway's route table. The two
// optimistic mutating routes (job reordering, candidate stage moves) are
// routed through the mutation coordinator instead, so the audit timeline and
// WebSocket notifications come along for free.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/talentbase/talentbase/notify"
	"github.com/talentbase/talentbase/optimistic"
	"github.com/talentbase/talentbase/store"
)

// Server owns the HTTP listener, the notification hub, and the coordinator.
type Server struct {
	httpServer  *http.Server
	hub         *notify.Hub
	coordinator *optimistic.Coordinator
	store       *store.Store
	api         http.Handler
	logger      *zap.SugaredLogger
}

// New wires a server. api is the gateway's route table; it serves everything
// the coordinator does not take over.
func New(st *store.Store, api http.Handler, coordinator *optimistic.Coordinator, hub *notify.Hub, logger *zap.SugaredLogger) *Server {
	s := &Server{
		hub:         hub,
		coordinator: coordinator,
		store:       st,
		api:         api,
		logger:      logger,
	}
	s.httpServer = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Optimistic mutation paths go through the coordinator.
	mux.HandleFunc("PATCH /jobs/reorder", s.handleReorderJobs)
	mux.HandleFunc("PATCH /candidates/{id}", s.handleCandidateStage)

	mux.HandleFunc("GET /ws", s.hub.ServeWS)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.Handle("/", s.api)
	return mux
}

// Start begins serving on the given port and blocks until the listener
// closes.
func (s *Server) Start(port int) error {
	s.httpServer.Addr = fmt.Sprintf(":%d", port)
	if s.logger != nil {
		s.logger.Infow("Server starting", "addr", s.httpServer.Addr)
	}

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and disconnects WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Infow("Server shutting down")
	}
	err := s.httpServer.Shutdown(ctx)
	s.hub.Close()
	return err
}

// Handler exposes the composed route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
