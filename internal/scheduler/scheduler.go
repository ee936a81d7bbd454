// Package scheduler drives the periodic bank sync: every tick it lists
// active integrations and enqueues one sync job per wallet. Actual cooldown
// enforcement lives in the sync package, so an aggressive tick interval
// only costs cheap no-op passes.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/jobs"
	"github.com/ohalushko/moneta/internal/sync"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

type Scheduler struct {
	integrations storage.IntegrationRepository
	publisher    jobs.Publisher
	log          zerolog.Logger
	tickInterval time.Duration
	notifyCh     chan struct{}
}

func New(integrations storage.IntegrationRepository, publisher jobs.Publisher, tickInterval time.Duration, log zerolog.Logger) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = 5 * time.Minute
	}
	return &Scheduler{
		integrations: integrations,
		publisher:    publisher,
		log:          log,
		tickInterval: tickInterval,
		notifyCh:     make(chan struct{}, 1),
	}
}

// Notify triggers an immediate pass. Non-blocking if one is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start runs the tick loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info().Dur("interval", s.tickInterval).Msg("scheduler started")
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	// Give the rest of startup a moment before the first pass.
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.enqueueSyncs(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.enqueueSyncs(ctx)
		case <-s.notifyCh:
			s.log.Debug().Msg("scheduler triggered by notification")
			s.enqueueSyncs(ctx)
		}
	}
}

func (s *Scheduler) enqueueSyncs(ctx context.Context) {
	integrations, err := s.integrations.ListActiveIntegrations(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("listing active integrations failed")
		return
	}

	for _, integration := range integrations {
		job := &jobs.StatementJob{
			Type:          jobs.JobTypeSyncWallet,
			UserID:        integration.UserID,
			WalletID:      integration.WalletID,
			IntegrationID: integration.ID,
			Trigger:       string(sync.TriggerScheduled),
		}
		if err := s.publisher.PublishStatementJob(ctx, job); err != nil {
			s.log.Error().Err(err).
				Str("wallet_id", integration.WalletID).
				Msg("enqueueing sync job failed")
			continue
		}
		s.log.Debug().
			Str("wallet_id", integration.WalletID).
			Str("job_id", job.JobID).
			Msg("sync job enqueued")
	}
}
