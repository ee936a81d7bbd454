package bigquery

import (
	"context"
	"time"

	"github.com/ohalushko/moneta/internal/domain"
)

// Narrow views over Repository. Consumers declare the slice they need so
// tests can swap in small fakes.

type TransactionRepository interface {
	InsertTransactions(ctx context.Context, txs []domain.Transaction) error
	QueryTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	SoftDeleteTransaction(ctx context.Context, userID, transactionID string) error
	UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error
}

type CategoryRepository interface {
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
	ListUserOverrides(ctx context.Context, userID string) ([]domain.CategoryOverride, error)
	UpsertUserOverride(ctx context.Context, ov domain.CategoryOverride) error
}

type WalletRepository interface {
	ListWallets(ctx context.Context, userID string) ([]domain.Wallet, error)
	GetWallet(ctx context.Context, userID, walletID string) (domain.Wallet, error)
	InsertWallet(ctx context.Context, w domain.Wallet) error
	SoftDeleteWallet(ctx context.Context, userID, walletID string) error
	SetPrimaryWallet(ctx context.Context, userID, walletID string) error
}

type IntegrationRepository interface {
	ListActiveIntegrations(ctx context.Context) ([]domain.BankIntegration, error)
	GetIntegrationForWallet(ctx context.Context, userID, walletID string) (domain.BankIntegration, error)
}

type SyncStateRepository interface {
	GetLastSync(ctx context.Context, walletID string) (time.Time, bool, error)
	SetLastSync(ctx context.Context, walletID string, ts time.Time) error
}

// SyncRepository is the slice of storage the statement reconciler needs.
type SyncRepository interface {
	InsertTransactions(ctx context.Context, txs []domain.Transaction) error
	ExternalIDs(ctx context.Context, userID, walletID string) (map[string]bool, error)
	LatestImportedDate(ctx context.Context, userID, walletID string) (time.Time, bool, error)
	GetLastSync(ctx context.Context, walletID string) (time.Time, bool, error)
	SetLastSync(ctx context.Context, walletID string, ts time.Time) error
}
