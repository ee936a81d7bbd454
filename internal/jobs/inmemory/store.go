package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/ohalushko/moneta/internal/jobs"
)

// Store keeps job state in memory. Data is lost on restart; the job
// surface is best-effort status reporting, not an audit log.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.StatementJob
}

func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.StatementJob),
	}
}

// SaveJob stores a copy of the job, keyed by id.
func (s *Store) SaveJob(ctx context.Context, job *jobs.StatementJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob returns a copy of the stored job.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.StatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs returns copies of jobs matching the filter.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.StatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.StatementJob
	for _, job := range s.jobs {
		if filter.WalletID != "" && job.WalletID != filter.WalletID {
			continue
		}
		if filter.Type != "" && job.Type != filter.Type {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}

		jobCopy := *job
		result = append(result, &jobCopy)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.StatementJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// UpdateJobStatus updates a job's status in place.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	return nil
}

var _ jobs.JobStore = (*Store)(nil)
