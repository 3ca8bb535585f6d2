// Package api exposes the service's HTTP surface: health check, job
// dispatch, and job status polling (spec §6), routed with httprouter and
// wrapped with rs/cors the way the teacher's own dependency set anticipates
// for its JSON-RPC HTTP endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/ethereum/go-ethereum/log"

	"github.com/omniaprotocol/node-benchmarking-service/jobqueue"
	"github.com/omniaprotocol/node-benchmarking-service/jobstore"
)

// admissionDelay is the visibility delay applied to a freshly dispatched
// job, per spec §4.8 step 4.
const admissionDelay = 1 * time.Second

// Server holds the dependencies the HTTP handlers need and the underlying
// net/http.Server for graceful shutdown.
type Server struct {
	queue          *jobqueue.Queue
	store          *jobstore.Store
	admissionDelay time.Duration

	httpServer *http.Server
}

// New builds a Server bound to addr (host:port), wiring CORS permissively
// the way a public benchmarking endpoint with no browser-side session state
// can afford to.
func New(addr string, queue *jobqueue.Queue, store *jobstore.Store) *Server {
	s := &Server{
		queue:          queue,
		store:          store,
		admissionDelay: admissionDelay,
	}

	router := httprouter.New()
	router.GET("/health", s.health)
	router.POST("/jobs", s.createJob)
	router.GET("/jobs/:id", s.jobStatus)

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// ListenAndServe blocks serving HTTP until the listener fails or Shutdown is
// called, returning http.ErrServerClosed in the latter case.
func (s *Server) ListenAndServe() error {
	log.Info("api: listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logInternalWriteFailure(jobID string, err error) {
	log.Error("api: status write failed after enqueue, job will be skipped by workers", "jobID", jobID, "err", err)
}
