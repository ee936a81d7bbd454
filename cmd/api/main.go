package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ohalushko/moneta/internal/api/handlers"
	"github.com/ohalushko/moneta/internal/api/middleware"
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
	if cfg.StatementsBucket == "" {
		log.Warn().Msg("No statements bucket configured - spreadsheet imports will be disabled")
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

	// Job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 2, jobStore)

	var statementStore *statements.Store
	if cfg.StatementsBucket != "" {
		statementStore, err = statements.NewStore(ctx, cfg.StatementsBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create statement store")
		}
		defer statementStore.Close()
	}

	var fetcher worker.StatementFetcher
	if statementStore != nil {
		fetcher = statementStore
	}

	imp := importer.New(repo, log)
	processor := worker.NewProcessor(syncer, repo, repo, fetcher, imp, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, processor.Handle); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Background sync scheduler
	sched := scheduler.New(repo, jobQueue, cfg.SyncInterval, log)
	go sched.Start(workerCtx)

	// Handlers
	transactionsHandler := handlers.NewTransactionsHandler(repo, log)
	categoriesHandler := handlers.NewCategoriesHandler(repo, log)
	walletsHandler := handlers.NewWalletsHandler(repo, log)
	analyticsHandler := handlers.NewAnalyticsHandler(repo, repo, log)
	syncHandler := handlers.NewSyncHandler(repo, repo, syncer, log)
	importHandler := handlers.NewImportHandler(statementStore, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactionsHandler.List(w, r)
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		switch {
		case r.Method == http.MethodDelete && rest != "" && !strings.Contains(rest, "/"):
			transactionsHandler.Delete(w, r, rest)
		case r.Method == http.MethodPut && strings.HasSuffix(rest, "/category"):
			transactionsHandler.UpdateCategory(w, r, strings.TrimSuffix(rest, "/category"))
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			categoriesHandler.List(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/categories/", func(w http.ResponseWriter, r *http.Request) {
		categoryID := strings.TrimPrefix(r.URL.Path, "/api/categories/")
		if r.Method == http.MethodPut && categoryID != "" {
			categoriesHandler.UpdateOverride(w, r, categoryID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/wallets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			walletsHandler.List(w, r)
		case http.MethodPost:
			walletsHandler.Create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/wallets/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/wallets/")
		switch {
		case r.Method == http.MethodDelete && rest != "" && !strings.Contains(rest, "/"):
			walletsHandler.Delete(w, r, rest)
		case r.Method == http.MethodPut && strings.HasSuffix(rest, "/primary"):
			walletsHandler.SetPrimary(w, r, strings.TrimSuffix(rest, "/primary"))
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/analytics/by-category", methodGet(analyticsHandler.ByCategory))
	mux.HandleFunc("/api/analytics/by-day", methodGet(analyticsHandler.ByDay))
	mux.HandleFunc("/api/analytics/month-over-month", methodGet(analyticsHandler.MonthOverMonth))
	mux.HandleFunc("/api/analytics/months", methodGet(analyticsHandler.Months))
	mux.HandleFunc("/api/analytics/unusual", methodGet(analyticsHandler.Unusual))

	mux.HandleFunc("/api/sync/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/sync/")
		switch {
		case r.Method == http.MethodPost && rest != "" && !strings.Contains(rest, "/"):
			syncHandler.Trigger(w, r, rest)
		case r.Method == http.MethodGet && strings.HasSuffix(rest, "/status"):
			syncHandler.Status(w, r, strings.TrimSuffix(rest, "/status"))
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/import", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if statementStore == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Statement uploads are not configured")
			return
		}
		importHandler.Import(w, r)
	})

	mux.HandleFunc("/api/jobs", methodGet(jobsHandler.List))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if r.Method == http.MethodGet && jobID != "" {
			jobsHandler.Get(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check bypasses auth.
	authed := middleware.Auth(mux)
	root := http.NewServeMux()
	root.Handle("/api/", authed)
	root.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(root),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func methodGet(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
