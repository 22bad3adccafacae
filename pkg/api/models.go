package api

import (
	"time"

	"github.com/gilchrisn/sbm-clustering-service/pkg/sbm"
	"github.com/gilchrisn/sbm-clustering-service/pkg/search"
)

// APIResponse is the envelope of every response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobParameters overrides search defaults; unset fields keep them
type JobParameters struct {
	BlockCounts   []int    `json:"block_counts,omitempty"`
	Eps           *float64 `json:"eps,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
	MaxSweeps     *int     `json:"max_sweeps,omitempty"`
	MinAcceptRate *float64 `json:"min_accept_rate,omitempty"`
	RandomSeed    *int64   `json:"random_seed,omitempty"`
	RemoveEmpty   *bool    `json:"remove_empty,omitempty"`
}

// JobRequest is the body of POST /api/v1/jobs
type JobRequest struct {
	Network    sbm.Input     `json:"network"`
	Parameters JobParameters `json:"parameters"`
}

type Job struct {
	ID          string         `json:"id"`
	Status      JobStatus      `json:"status"`
	Parameters  JobParameters  `json:"parameters"`
	Network     sbm.Info       `json:"network"`
	Error       string         `json:"error,omitempty"`
	Result      *search.Result `json:"result,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Finished reports whether the job reached a terminal status
func (j *Job) Finished() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// apply copies the set parameters onto a search configuration
func (p JobParameters) apply(config *search.Config) {
	if len(p.BlockCounts) > 0 {
		config.Set("algorithm.block_counts", p.BlockCounts)
	}
	if p.Eps != nil {
		config.Set("algorithm.eps", *p.Eps)
	}
	if p.Beta != nil {
		config.Set("algorithm.beta", *p.Beta)
	}
	if p.MaxSweeps != nil {
		config.Set("algorithm.max_sweeps", *p.MaxSweeps)
	}
	if p.MinAcceptRate != nil {
		config.Set("algorithm.min_accept_rate", *p.MinAcceptRate)
	}
	if p.RandomSeed != nil {
		config.Set("algorithm.random_seed", *p.RandomSeed)
	}
	if p.RemoveEmpty != nil {
		config.Set("algorithm.remove_empty", *p.RemoveEmpty)
	}
}
