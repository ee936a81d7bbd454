// Package worker executes queued statement jobs: bank syncs published by
// the scheduler or API, and spreadsheet imports published after upload.
package worker

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/domain"
	"github.com/ohalushko/moneta/internal/importer"
	"github.com/ohalushko/moneta/internal/jobs"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
	syncpkg "github.com/ohalushko/moneta/internal/sync"
)

// StatementFetcher downloads an uploaded statement file by URI.
type StatementFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// WalletSyncer runs one sync pass, satisfied by *sync.Syncer.
type WalletSyncer interface {
	SyncWallet(ctx context.Context, integration domain.BankIntegration, trigger syncpkg.Trigger) (syncpkg.Result, error)
}

// Processor dispatches jobs by type. It implements jobs.JobHandler via
// the Handle method.
type Processor struct {
	syncer       WalletSyncer
	integrations storage.IntegrationRepository
	categories   storage.CategoryRepository
	statements   StatementFetcher
	importer     *importer.Importer
	log          zerolog.Logger
}

func NewProcessor(
	syncer WalletSyncer,
	integrations storage.IntegrationRepository,
	categories storage.CategoryRepository,
	statements StatementFetcher,
	imp *importer.Importer,
	log zerolog.Logger,
) *Processor {
	return &Processor{
		syncer:       syncer,
		integrations: integrations,
		categories:   categories,
		statements:   statements,
		importer:     imp,
		log:          log,
	}
}

// Handle processes one job. Returning an error marks the job for retry.
func (p *Processor) Handle(ctx context.Context, job jobs.Job) error {
	statementJob, ok := job.(*jobs.StatementJob)
	if !ok {
		return fmt.Errorf("unexpected job type: %T", job)
	}

	switch statementJob.Type {
	case jobs.JobTypeSyncWallet:
		return p.handleSync(ctx, statementJob)
	case jobs.JobTypeImportStatement:
		return p.handleImport(ctx, statementJob)
	default:
		return fmt.Errorf("unknown job type: %s", statementJob.Type)
	}
}

func (p *Processor) handleSync(ctx context.Context, job *jobs.StatementJob) error {
	integration, err := p.integrations.GetIntegrationForWallet(ctx, job.UserID, job.WalletID)
	if err != nil {
		return fmt.Errorf("handleSync: loading integration for wallet %s: %w", job.WalletID, err)
	}

	trigger := syncpkg.Trigger(job.Trigger)
	if trigger == "" {
		trigger = syncpkg.TriggerScheduled
	}

	result, err := p.syncer.SyncWallet(ctx, integration, trigger)
	if err != nil {
		return fmt.Errorf("handleSync: syncing wallet %s: %w", job.WalletID, err)
	}

	p.log.Info().
		Str("job_id", job.JobID).
		Str("wallet_id", job.WalletID).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Bool("throttled", result.Throttled).
		Bool("on_cooldown", result.OnCooldown).
		Msg("Sync job processed")
	return nil
}

func (p *Processor) handleImport(ctx context.Context, job *jobs.StatementJob) error {
	if p.statements == nil {
		return fmt.Errorf("handleImport: no statement store configured")
	}

	data, err := p.statements.Fetch(ctx, job.FileURI)
	if err != nil {
		return fmt.Errorf("handleImport: fetching %s: %w", job.FileURI, err)
	}

	categories, err := p.categories.ListActiveCategories(ctx)
	if err != nil {
		return fmt.Errorf("handleImport: listing categories: %w", err)
	}

	result, err := p.importer.Import(ctx, bytes.NewReader(data), job.UserID, job.WalletID, categories)
	if err != nil {
		return fmt.Errorf("handleImport: importing into wallet %s: %w", job.WalletID, err)
	}

	p.log.Info().
		Str("job_id", job.JobID).
		Str("wallet_id", job.WalletID).
		Int("success", result.Success).
		Int("failed", result.Failed).
		Msg("Import job processed")
	return nil
}
