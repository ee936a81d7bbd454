package importer

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/classify"
	"github.com/ohalushko/moneta/internal/domain"
)

// Transform maps parsed rows onto transaction drafts for one wallet.
// Transfer detection takes precedence over the amount sign so internal
// moves never count as spending or income.
func Transform(rows []ParsedRow, userID, walletID string, categories []domain.Category, log zerolog.Logger) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, fromParsedRow(row, userID, walletID, categories, log))
	}
	return txs
}

func fromParsedRow(row ParsedRow, userID, walletID string, categories []domain.Category, log zerolog.Logger) domain.Transaction {
	t := domain.Transaction{
		ID:          uuid.New().String(),
		WalletID:    walletID,
		UserID:      userID,
		Label:       row.Category,
		Description: row.Description,
		Date:        row.Date,
		Source:      "xlsx_import",
	}

	switch {
	case classify.IsTransfer(row.Category) || classify.IsTransfer(row.Description):
		t.Type = domain.TypeTransfer
		t.CategoryID = domain.CategoryTransfers
	case row.Amount < 0:
		t.Type = domain.TypeExpense
		t.CategoryID = classify.ByLabel(row.Category, categories, log)
	default:
		t.Type = domain.TypeIncome
		t.CategoryID = classify.ByLabel(row.Category, categories, log)
	}

	if row.Amount < 0 {
		t.Amount = -row.Amount
	} else {
		t.Amount = row.Amount
	}
	return t
}
