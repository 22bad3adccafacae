package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// maxRequestBytes bounds the size of a submitted network
const maxRequestBytes = 64 << 20

// Handlers contains HTTP request handlers
type Handlers struct {
	jobService *JobService
	startedAt  time.Time
}

func NewHandlers(jobService *JobService) *Handlers {
	return &Handlers{
		jobService: jobService,
		startedAt:  time.Now(),
	}
}

// SubmitJob decodes a network and parameters and queues a search
func (h *Handlers) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	job, err := h.jobService.Submit(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrBadRequest) {
			status = http.StatusBadRequest
		}
		log.Warn().Err(err).Msg("Job rejected")
		writeErrorResponse(w, status, "Failed to submit job", err)
		return
	}

	writeSuccessResponse(w, http.StatusAccepted, "Job submitted successfully", job)
}

// ListJobs lists all jobs without their results
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeSuccessResponse(w, http.StatusOK, "Jobs retrieved successfully", h.jobService.List())
}

// GetJob returns a job, including its result once completed
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.jobService.Get(jobID)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Job retrieved successfully", job)
}

// CancelJob cancels a queued or running job
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.jobService.Cancel(jobID)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Job not found", err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Job cancelled", job)
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	counts := make(map[JobStatus]int)
	for _, job := range h.jobService.List() {
		counts[job.Status]++
	}

	writeSuccessResponse(w, http.StatusOK, "Service is healthy", map[string]interface{}{
		"status":     "healthy",
		"uptime_sec": int64(time.Since(h.startedAt).Seconds()),
		"jobs":       counts,
	})
}
