// The import binary loads a local spreadsheet export straight into a
// wallet, bypassing the HTTP upload path. Handy for backfills.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/ohalushko/moneta/internal/config"
	"github.com/ohalushko/moneta/internal/importer"
	"github.com/ohalushko/moneta/internal/logger"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

func main() {
	var (
		file     = flag.String("file", "", "Path to the XLSX statement export")
		walletID = flag.String("wallet", "", "Target wallet id")
		userID   = flag.String("user", "", "Owning user id")
	)
	flag.Parse()

	log := logger.New()

	if *file == "" || *walletID == "" || *userID == "" {
		log.Fatal().Msg("-file, -wallet and -user are required")
	}

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

	categories, err := repo.ListActiveCategories(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list categories")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to open statement file")
	}
	defer f.Close()

	result, err := importer.New(repo, log).Import(ctx, f, *userID, *walletID, categories)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	log.Info().
		Str("file", *file).
		Str("wallet_id", *walletID).
		Int("success", result.Success).
		Int("failed", result.Failed).
		Msg("Import finished")
}
