package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/sbm-clustering-service/pkg/parser"
	"github.com/gilchrisn/sbm-clustering-service/pkg/sbm"
	"github.com/gilchrisn/sbm-clustering-service/pkg/search"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrBadRequest  = errors.New("invalid job request")
)

// JobService runs block model searches in the background. Every job owns
// its network, so jobs never share mutable state.
type JobService struct {
	jobs            map[string]*Job
	cancels         map[string]context.CancelFunc
	workers         chan struct{}
	mutex           sync.RWMutex
	jobTTL          time.Duration
	jobTimeout      time.Duration
	cleanupInterval time.Duration
	logLevel        string
	done            chan struct{}
	closeOnce       sync.Once
}

// NewJobService creates a new job service and starts its cleanup loop
func NewJobService(cfg JobConfig) *JobService {
	service := &JobService{
		jobs:            make(map[string]*Job),
		cancels:         make(map[string]context.CancelFunc),
		workers:         make(chan struct{}, max(cfg.MaxWorkers, 1)),
		jobTTL:          cfg.ResultTTL,
		jobTimeout:      cfg.JobTimeout,
		cleanupInterval: cfg.CleanupInterval,
		logLevel:        cfg.LogLevel,
		done:            make(chan struct{}),
	}

	if service.cleanupInterval > 0 {
		go service.cleanupLoop()
	}

	return service
}

// Submit validates the request, builds its network and queues the search.
// Validation failures wrap ErrBadRequest.
func (s *JobService) Submit(req JobRequest) (*Job, error) {
	config := search.NewConfig()
	config.Set("logging.level", s.logLevel)
	config.Set("logging.enable_progress", false)
	req.Parameters.apply(config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	net, err := sbm.NewNetwork(parser.Normalize(req.Network), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.jobTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.jobTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	now := time.Now()
	job := &Job{
		ID:         uuid.New().String(),
		Status:     JobStatusQueued,
		Parameters: req.Parameters,
		Network:    net.Info(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mutex.Lock()
	s.jobs[job.ID] = job
	s.cancels[job.ID] = cancel
	snapshot := *job
	s.mutex.Unlock()

	log.Info().
		Str("job_id", job.ID).
		Int("nodes", job.Network.NumNodes).
		Int("edges", job.Network.NumEdges).
		Msg("Job submitted")

	go s.processJob(ctx, job.ID, net, config)

	return &snapshot, nil
}

// Get returns a copy of the job
func (s *JobService) Get(jobID string) (*Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	snapshot := *job
	return &snapshot, nil
}

// List returns copies of all jobs, results left out
func (s *JobService) List() []*Job {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		snapshot := *job
		snapshot.Result = nil
		jobs = append(jobs, &snapshot)
	}
	return jobs
}

// Cancel stops a queued or running job. Finished jobs are left as they are.
func (s *JobService) Cancel(jobID string) (*Job, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	if !job.Finished() {
		if cancel, ok := s.cancels[jobID]; ok {
			cancel()
			delete(s.cancels, jobID)
		}
		now := time.Now()
		job.Status = JobStatusCancelled
		job.CompletedAt = &now
		job.UpdatedAt = now

		log.Info().
			Str("job_id", jobID).
			Msg("Job cancelled")
	}

	snapshot := *job
	return &snapshot, nil
}

// Close cancels every unfinished job and stops the cleanup loop
func (s *JobService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)

		s.mutex.Lock()
		defer s.mutex.Unlock()
		for jobID, cancel := range s.cancels {
			cancel()
			delete(s.cancels, jobID)
		}
	})
}

// processJob waits for a worker slot and runs the search
func (s *JobService) processJob(ctx context.Context, jobID string, net *sbm.Network, config *search.Config) {
	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		s.failJob(jobID, ctx.Err())
		return
	}

	if !s.startJob(jobID) {
		return
	}

	log.Info().
		Str("job_id", jobID).
		Msg("Job processing started")

	result, err := search.Run(ctx, net, config)
	if err != nil {
		s.failJob(jobID, fmt.Errorf("search failed: %w", err))
		return
	}

	s.completeJob(jobID, result)
}

// startJob moves a queued job to running. It reports false when the job was
// cancelled in the meantime.
func (s *JobService) startJob(jobID string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Status != JobStatusQueued {
		return false
	}

	now := time.Now()
	job.Status = JobStatusRunning
	job.StartedAt = &now
	job.UpdatedAt = now
	return true
}

// completeJob marks a job as completed with results
func (s *JobService) completeJob(jobID string, result *search.Result) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Finished() {
		return
	}

	now := time.Now()
	job.Status = JobStatusCompleted
	job.Result = result
	job.CompletedAt = &now
	job.UpdatedAt = now
	s.release(jobID)

	log.Info().
		Str("job_id", jobID).
		Float64("entropy", result.Entropy).
		Int("levels", result.NumLevels).
		Int64("runtime_ms", result.Statistics.RuntimeMS).
		Msg("Job completed successfully")
}

// failJob marks a job as failed unless it already finished, which covers
// jobs whose context was cancelled through Cancel.
func (s *JobService) failJob(jobID string, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists || job.Finished() {
		return
	}

	now := time.Now()
	job.Status = JobStatusFailed
	job.Error = err.Error()
	job.CompletedAt = &now
	job.UpdatedAt = now
	s.release(jobID)

	log.Error().
		Str("job_id", jobID).
		Err(err).
		Msg("Job failed")
}

// release drops the job's context; callers hold the lock
func (s *JobService) release(jobID string) {
	if cancel, ok := s.cancels[jobID]; ok {
		cancel()
		delete(s.cancels, jobID)
	}
}

// cleanupLoop periodically cleans up old jobs
func (s *JobService) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup(time.Now())
		case <-s.done:
			return
		}
	}
}

// cleanup removes finished jobs not updated since now minus the TTL
func (s *JobService) cleanup(now time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := now.Add(-s.jobTTL)
	cleaned := 0

	for jobID, job := range s.jobs {
		if job.Finished() && job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		log.Info().
			Int("cleaned_jobs", cleaned).
			Msg("Job cleanup completed")
	}
	return cleaned
}
