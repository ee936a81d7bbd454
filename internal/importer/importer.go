package importer

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/domain"
)

// TransactionInserter is the only piece of storage the importer needs.
type TransactionInserter interface {
	InsertTransactions(ctx context.Context, txs []domain.Transaction) error
}

// Result counts imported rows. Per-row error detail is deliberately not
// reported; the operation is user-initiated and retryable.
type Result struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Importer runs the parse, transform and bulk-insert steps for one file.
type Importer struct {
	repo TransactionInserter
	log  zerolog.Logger
}

func New(repo TransactionInserter, log zerolog.Logger) *Importer {
	return &Importer{repo: repo, log: log}
}

// Import parses the spreadsheet and bulk-inserts the resulting drafts
// into the given wallet.
func (i *Importer) Import(ctx context.Context, file io.Reader, userID, walletID string, categories []domain.Category) (Result, error) {
	rows, err := Parse(file)
	if err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, nil
	}

	txs := Transform(rows, userID, walletID, categories, i.log)
	if err := i.repo.InsertTransactions(ctx, txs); err != nil {
		return Result{Failed: len(txs)}, err
	}

	i.log.Info().
		Str("wallet_id", walletID).
		Int("rows", len(txs)).
		Msg("statement imported")
	return Result{Success: len(txs)}, nil
}
