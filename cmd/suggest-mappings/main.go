// The suggest-mappings binary scans recent transactions that fell into
// the "Other" bucket and asks Gemini to propose category mappings for
// their labels. Output is printed for review; nothing is written back.
package main

import (
	"context"
	"flag"
	"sort"
	"time"

	"github.com/ohalushko/moneta/internal/config"
	"github.com/ohalushko/moneta/internal/domain"
	"github.com/ohalushko/moneta/internal/logger"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
	"github.com/ohalushko/moneta/internal/suggest"
)

func main() {
	var (
		userID   = flag.String("user", "", "User id to scan")
		walletID = flag.String("wallet", "", "Optional wallet id to narrow the scan")
		days     = flag.Int("days", 90, "How many days back to scan")
	)
	flag.Parse()

	log := logger.New()

	if *userID == "" {
		log.Fatal().Msg("-user is required")
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

	from := time.Now().AddDate(0, 0, -*days)
	txs, err := repo.QueryTransactions(ctx, domain.TransactionFilter{
		UserID:     *userID,
		WalletID:   *walletID,
		CategoryID: domain.CategoryOther,
		From:       &from,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to query transactions")
	}

	seen := make(map[string]bool)
	var labels []string
	for _, t := range txs {
		if t.Label == "" || seen[t.Label] {
			continue
		}
		seen[t.Label] = true
		labels = append(labels, t.Label)
	}
	sort.Strings(labels)

	if len(labels) == 0 {
		log.Info().Msg("No unmapped labels found")
		return
	}
	log.Info().Int("labels", len(labels)).Msg("Collected unmapped labels")

	categories, err := repo.ListActiveCategories(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list categories")
	}

	mappings, err := suggest.SuggestMappings(ctx, labels, categories)
	if err != nil {
		log.Fatal().Err(err).Msg("Suggestion request failed")
	}

	for _, m := range mappings {
		log.Info().
			Str("label", m.Label).
			Str("category_id", m.CategoryID).
			Str("confidence", m.Confidence).
			Str("reason", m.Reason).
			Msg("Suggested mapping")
	}
	log.Info().Int("suggestions", len(mappings)).Msg("Done")
}
