package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ethereum/go-ethereum/log"

	"github.com/omniaprotocol/node-benchmarking-service/jobstore"
	"github.com/omniaprotocol/node-benchmarking-service/model"
)

type idResponse struct {
	ID string `json:"id"`
}

type statusResponse struct {
	Status string `json:"status"`
	RPS    *int64 `json:"rps,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// health answers GET /health with an empty 200 OK, used for readiness probes.
func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

// createJob implements the Dispatcher (spec §4.8): validate, enqueue, record
// PENDING, and hand back the new job-id.
func (s *Server) createJob(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, badRequest("Failed to read request body"))
		return
	}

	var job model.Job
	if err := json.Unmarshal(body, &job); err != nil {
		s.writeError(w, badRequest("Failed to parse request body"))
		return
	}
	if err := job.Validate(); err != nil {
		s.writeError(w, badRequest(err.Error()))
		return
	}
	if !job.Chain.Valid() {
		s.writeError(w, badRequest("Unsupported chain: "+string(job.Chain)))
		return
	}

	jobID, err := s.queue.Send(r.Context(), string(body), s.admissionDelay)
	if err != nil {
		s.writeError(w, internal("Failed to enqueue job", err))
		return
	}
	if err := s.store.Set(r.Context(), jobID, model.StatusPending); err != nil {
		// Step 4 already succeeded; per spec §4.8 this is an accepted
		// inconsistency window, not a request failure — the queued job
		// will simply find no store entry and be skipped by a worker.
		s.logInternalWriteFailure(jobID, err)
	}

	s.writeJSON(w, http.StatusCreated, idResponse{ID: jobID})
}

// jobStatus implements the Status Reader (spec §4.9): translate the numeric
// status into a client-facing verdict, reaping terminal entries on read.
func (s *Server) jobStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	status, err := s.store.Get(r.Context(), id)
	if errors.Is(err, jobstore.ErrNotFound) {
		s.writeError(w, notFound("Job not found"))
		return
	}
	if err != nil {
		s.writeError(w, internal("Failed to read job status", err))
		return
	}

	switch {
	case status == model.StatusPending || status == model.StatusAllocated:
		s.writeJSON(w, http.StatusOK, statusResponse{Status: "PENDING"})
	case status == model.StatusErrored:
		_ = s.store.Delete(r.Context(), id)
		s.writeJSON(w, http.StatusOK, statusResponse{Status: "ERRORED"})
	default:
		rps := int64(status)
		_ = s.store.Delete(r.Context(), id)
		s.writeJSON(w, http.StatusOK, statusResponse{Status: "FINISHED", RPS: &rps})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends e as a JSON error body. Internal errors are logged with
// their cause, and the client receives only the generic message.
func (s *Server) writeError(w http.ResponseWriter, e *Error) {
	msg := e.Error()
	if e.Kind == KindInternal {
		log.Error("api: internal error", "msg", e.Message, "cause", e.Cause)
		msg = e.Message
	}
	s.writeJSON(w, e.Status(), errorResponse{Error: msg})
}
