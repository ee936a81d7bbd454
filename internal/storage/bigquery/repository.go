package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/ohalushko/moneta/internal/domain"
)

// Repository holds a shared BigQuery client and exposes domain-typed
// operations over the finance dataset. Handlers and workers share one
// Repository; the underlying client is safe for concurrent use.
type Repository struct {
	client  *bigquery.Client
	dataset string
}

// New creates a Repository with its own BigQuery client.
func New(ctx context.Context, projectID, dataset string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("New: creating bigquery client: %w", err)
	}
	return &Repository{client: client, dataset: dataset}, nil
}

// NewWithClient wraps an existing client, used by commands that already
// hold one.
func NewWithClient(client *bigquery.Client, dataset string) *Repository {
	return &Repository{client: client, dataset: dataset}
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	rows := make([]*TransactionRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, FromDomain(t))
	}
	return InsertTransactionsWithClient(ctx, r.client, r.dataset, rows)
}

func (r *Repository) QueryTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	rows, err := QueryTransactionsWithClient(ctx, r.client, r.dataset, filter)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, row.ToDomain())
	}
	return txs, nil
}

func (r *Repository) SoftDeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return SoftDeleteTransactionWithClient(ctx, r.client, r.dataset, userID, transactionID)
}

func (r *Repository) UpdateTransactionCategory(ctx context.Context, userID, transactionID, categoryID string) error {
	return UpdateTransactionCategoryWithClient(ctx, r.client, r.dataset, userID, transactionID, categoryID)
}

func (r *Repository) ExternalIDs(ctx context.Context, userID, walletID string) (map[string]bool, error) {
	return ExternalIDsWithClient(ctx, r.client, r.dataset, userID, walletID)
}

func (r *Repository) LatestImportedDate(ctx context.Context, userID, walletID string) (time.Time, bool, error) {
	return LatestImportedDateWithClient(ctx, r.client, r.dataset, userID, walletID)
}

func (r *Repository) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := ListActiveCategoriesWithClient(ctx, r.client, r.dataset)
	if err != nil {
		return nil, err
	}
	cats := make([]domain.Category, 0, len(rows))
	for i := range rows {
		cats = append(cats, rows[i].ToDomain())
	}
	return cats, nil
}

func (r *Repository) ListUserOverrides(ctx context.Context, userID string) ([]domain.CategoryOverride, error) {
	rows, err := ListUserOverridesWithClient(ctx, r.client, r.dataset, userID)
	if err != nil {
		return nil, err
	}
	ovs := make([]domain.CategoryOverride, 0, len(rows))
	for i := range rows {
		ovs = append(ovs, rows[i].ToDomain())
	}
	return ovs, nil
}

func (r *Repository) UpsertUserOverride(ctx context.Context, ov domain.CategoryOverride) error {
	return UpsertUserOverrideWithClient(ctx, r.client, r.dataset, ov)
}

func (r *Repository) ListWallets(ctx context.Context, userID string) ([]domain.Wallet, error) {
	rows, err := ListWalletsWithClient(ctx, r.client, r.dataset, userID)
	if err != nil {
		return nil, err
	}
	wallets := make([]domain.Wallet, 0, len(rows))
	for i := range rows {
		wallets = append(wallets, rows[i].ToDomain())
	}
	return wallets, nil
}

func (r *Repository) GetWallet(ctx context.Context, userID, walletID string) (domain.Wallet, error) {
	row, err := GetWalletWithClient(ctx, r.client, r.dataset, userID, walletID)
	if err != nil {
		return domain.Wallet{}, err
	}
	return row.ToDomain(), nil
}

func (r *Repository) InsertWallet(ctx context.Context, w domain.Wallet) error {
	row := &WalletRow{
		WalletID:  w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Currency:  w.Currency,
		Balance:   w.Balance,
		IsPrimary: w.IsPrimary,
	}
	return InsertWalletWithClient(ctx, r.client, r.dataset, row)
}

func (r *Repository) SoftDeleteWallet(ctx context.Context, userID, walletID string) error {
	return SoftDeleteWalletWithClient(ctx, r.client, r.dataset, userID, walletID)
}

func (r *Repository) SetPrimaryWallet(ctx context.Context, userID, walletID string) error {
	return SetPrimaryWalletWithClient(ctx, r.client, r.dataset, userID, walletID)
}

func (r *Repository) ListActiveIntegrations(ctx context.Context) ([]domain.BankIntegration, error) {
	rows, err := ListActiveIntegrationsWithClient(ctx, r.client, r.dataset)
	if err != nil {
		return nil, err
	}
	integrations := make([]domain.BankIntegration, 0, len(rows))
	for i := range rows {
		integrations = append(integrations, rows[i].ToDomain())
	}
	return integrations, nil
}

func (r *Repository) GetIntegrationForWallet(ctx context.Context, userID, walletID string) (domain.BankIntegration, error) {
	row, err := GetIntegrationForWalletWithClient(ctx, r.client, r.dataset, userID, walletID)
	if err != nil {
		return domain.BankIntegration{}, err
	}
	return row.ToDomain(), nil
}

func (r *Repository) GetLastSync(ctx context.Context, walletID string) (time.Time, bool, error) {
	return GetLastSyncWithClient(ctx, r.client, r.dataset, walletID)
}

func (r *Repository) SetLastSync(ctx context.Context, walletID string, ts time.Time) error {
	return SetLastSyncWithClient(ctx, r.client, r.dataset, walletID, ts)
}
