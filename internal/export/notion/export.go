package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/analytics"
	"github.com/ohalushko/moneta/internal/category"
	"github.com/ohalushko/moneta/internal/domain"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

// Exporter recomputes a wallet's monthly by-category summary and mirrors
// it into a Notion database.
type Exporter struct {
	transactions storage.TransactionRepository
	categories   storage.CategoryRepository
	notion       NotionService
	databaseID   string
	log          zerolog.Logger
}

func NewExporter(transactions storage.TransactionRepository, categories storage.CategoryRepository, notion NotionService, databaseID string, log zerolog.Logger) *Exporter {
	return &Exporter{
		transactions: transactions,
		categories:   categories,
		notion:       notion,
		databaseID:   databaseID,
		log:          log,
	}
}

// Result reports what one export pass did.
type Result struct {
	Created  int
	Updated  int
	Archived int
}

// ExportMonth exports expense and income summaries for one wallet-month.
// Existing pages are updated in place; pages for rows that vanished from
// the recomputed summary are archived. When dryRun is set nothing is
// written, only counted.
func (e *Exporter) ExportMonth(ctx context.Context, userID, walletID string, year int, month time.Month, dryRun bool) (Result, error) {
	rows, err := e.buildRows(ctx, userID, walletID, year, month)
	if err != nil {
		return Result{}, err
	}

	pages, err := e.queryAllPages(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("ExportMonth: querying existing pages: %w", err)
	}

	monthPrefix := fmt.Sprintf("%s/%04d-%02d/", walletID, year, int(month))
	existing := make(map[string]string) // key -> page id
	for _, page := range pages {
		key := extractKey(page)
		if key != "" {
			existing[key] = string(page.ID)
		}
	}

	valid := make(map[string]bool, len(rows))
	var result Result

	for _, row := range rows {
		key := row.Key()
		valid[key] = true
		props := SummaryToNotionProperties(row)

		if pageID, ok := existing[key]; ok {
			if dryRun {
				result.Updated++
				continue
			}
			if _, err := e.notion.UpdatePage(ctx, pageID, props); err != nil {
				e.log.Warn().Err(err).Str("key", key).Msg("Failed to update summary page")
				continue
			}
			result.Updated++
		} else {
			if dryRun {
				result.Created++
				continue
			}
			if _, err := e.notion.CreatePage(ctx, e.databaseID, props); err != nil {
				e.log.Warn().Err(err).Str("key", key).Msg("Failed to create summary page")
				continue
			}
			result.Created++
		}
	}

	// Archive stale pages for this wallet-month only; other months and
	// wallets are left alone.
	for key, pageID := range existing {
		if valid[key] || len(key) < len(monthPrefix) || key[:len(monthPrefix)] != monthPrefix {
			continue
		}
		if dryRun {
			result.Archived++
			continue
		}
		if err := e.notion.ArchivePage(ctx, pageID); err != nil {
			e.log.Warn().Err(err).Str("key", key).Msg("Failed to archive stale summary page")
			continue
		}
		result.Archived++
	}

	e.log.Info().
		Str("wallet_id", walletID).
		Int("year", year).
		Int("month", int(month)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("archived", result.Archived).
		Bool("dry_run", dryRun).
		Msg("Notion export finished")
	return result, nil
}

func (e *Exporter) buildRows(ctx context.Context, userID, walletID string, year int, month time.Month) ([]SummaryRow, error) {
	txs, err := e.transactions.QueryTransactions(ctx, domain.TransactionFilter{
		UserID:   userID,
		WalletID: walletID,
	})
	if err != nil {
		return nil, fmt.Errorf("buildRows: querying transactions: %w", err)
	}

	categories, err := e.categories.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("buildRows: listing categories: %w", err)
	}
	overrides, err := e.categories.ListUserOverrides(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buildRows: listing overrides: %w", err)
	}
	overrideMap := category.OverrideMap(overrides)

	var rows []SummaryRow
	for _, kind := range []analytics.Kind{analytics.KindExpense, analytics.KindIncome} {
		for _, ca := range analytics.ByCategory(txs, walletID, year, month, kind) {
			rows = append(rows, SummaryRow{
				WalletID: walletID,
				Year:     year,
				Month:    month,
				Kind:     kind,
				Category: category.Resolve(ca.CategoryID, overrideMap, categories),
				Amount:   ca.Amount,
			})
		}
	}
	return rows, nil
}

// queryAllPages pages through the database with the cursor API.
func (e *Exporter) queryAllPages(ctx context.Context) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	req := &notionapi.DatabaseQueryRequest{PageSize: 100}

	for {
		resp, err := e.notion.QueryDatabase(ctx, e.databaseID, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			return pages, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}
