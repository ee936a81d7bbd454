// The export-notion binary mirrors one wallet-month's category summary
// into a Notion database.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/ohalushko/moneta/internal/config"
	"github.com/ohalushko/moneta/internal/export/notion"
	"github.com/ohalushko/moneta/internal/logger"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

func main() {
	now := time.Now()
	var (
		walletID   = flag.String("wallet", "", "Wallet id to export")
		userID     = flag.String("user", "", "Owning user id")
		year       = flag.Int("year", now.Year(), "Year to export")
		month      = flag.Int("month", int(now.Month()), "Month to export (1-12)")
		databaseID = flag.String("database", os.Getenv("NOTION_DATABASE_ID"), "Notion database id (or set NOTION_DATABASE_ID)")
		dryRun     = flag.Bool("dry-run", false, "Log what would change without writing")
	)
	flag.Parse()

	log := logger.New()

	if *walletID == "" || *userID == "" {
		log.Fatal().Msg("-wallet and -user are required")
	}
	if *databaseID == "" {
		log.Fatal().Msg("Notion database id is required")
	}
	if *month < 1 || *month > 12 {
		log.Fatal().Int("month", *month).Msg("Month must be 1-12")
	}

	token := os.Getenv("NOTION_TOKEN")
	if token == "" {
		log.Fatal().Msg("NOTION_TOKEN is required")
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

	exporter := notion.NewExporter(repo, repo, notion.NewClient(token), *databaseID, log)

	result, err := exporter.ExportMonth(ctx, *userID, *walletID, *year, time.Month(*month), *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("archived", result.Archived).
		Msg("Export complete")
}
