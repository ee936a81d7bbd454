// Package jobs defines the background job model: bank statement syncs
// triggered by the scheduler or the API, and spreadsheet imports handed
// off after upload.
package jobs

import (
	"context"
	"time"
)

// JobType identifies what a job does.
type JobType string

const (
	// JobTypeSyncWallet pulls a bank statement window for one wallet.
	JobTypeSyncWallet JobType = "sync_wallet"
	// JobTypeImportStatement parses an uploaded spreadsheet into a wallet.
	JobTypeImportStatement JobType = "import_statement"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// StatementJob is a queued unit of statement work. Sync jobs carry the
// integration id; import jobs carry the uploaded file's storage URI.
type StatementJob struct {
	JobID string  `json:"job_id"`
	Type  JobType `json:"type"`

	UserID   string `json:"user_id"`
	WalletID string `json:"wallet_id"`

	// IntegrationID is set for sync jobs.
	IntegrationID string `json:"integration_id,omitempty"`

	// Trigger records whether the sync was user-initiated or scheduled,
	// which picks the cooldown applied.
	Trigger string `json:"trigger,omitempty"`

	// FileURI is the gs:// location of an uploaded statement, set for
	// import jobs.
	FileURI string `json:"file_uri,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the generic view the queue machinery works with.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *StatementJob) GetID() string        { return j.JobID }
func (j *StatementJob) GetType() JobType     { return j.Type }
func (j *StatementJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. The in-memory queue is the only implementation
// today; the interface leaves room for Cloud Tasks or Pub/Sub later.
type Publisher interface {
	PublishStatementJob(ctx context.Context, job *StatementJob) error
	Close() error
}

// Consumer pulls jobs off the queue and runs them through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so the API can answer status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *StatementJob) error
	GetJob(ctx context.Context, jobID string) (*StatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*StatementJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	WalletID string
	Type     JobType
	Status   JobStatus
	Limit    int
	Offset   int
}
