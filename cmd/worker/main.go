// The worker binary runs the background sync loop without the HTTP API:
// scheduler ticks enqueue sync jobs, the in-process queue executes them.
// Useful when the API is deployed separately or disabled.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ohalushko/moneta/internal/config"
	"github.com/ohalushko/moneta/internal/importer"
	"github.com/ohalushko/moneta/internal/jobs/inmemory"
	"github.com/ohalushko/moneta/internal/logger"
	"github.com/ohalushko/moneta/internal/monobank"
	"github.com/ohalushko/moneta/internal/scheduler"
	"github.com/ohalushko/moneta/internal/statements"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
	syncpkg "github.com/ohalushko/moneta/internal/sync"
	"github.com/ohalushko/moneta/internal/worker"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.BigQueryProject == "" {
		log.Fatal().Msg("BIGQUERY_PROJECT is required")
	}

	ctx := context.Background()

	repo, err := storage.New(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage repository")
	}
	defer repo.Close()

	bank := monobank.NewClient(monobank.WithBaseURL(cfg.MonobankBaseURL))
	syncer := syncpkg.NewSyncer(bank, repo, log,
		syncpkg.WithCooldowns(cfg.SyncCooldown, cfg.BatchSyncCooldown))

	var statementStore *statements.Store
	if cfg.StatementsBucket != "" {
		statementStore, err = statements.NewStore(ctx, cfg.StatementsBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create statement store")
		}
		defer statementStore.Close()
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 2, jobStore)

	var fetcher worker.StatementFetcher
	if statementStore != nil {
		fetcher = statementStore
	}

	imp := importer.New(repo, log)
	processor := worker.NewProcessor(syncer, repo, repo, fetcher, imp, log)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := jobQueue.Start(workerCtx, processor.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job queue")
	}

	sched := scheduler.New(repo, jobQueue, cfg.SyncInterval, log)
	go sched.Start(workerCtx)

	log.Info().Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Worker exited")
}
