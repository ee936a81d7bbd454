// Package bigquery is the storage collaborator: row types and operations
// over the finance dataset (wallets, transactions, categories,
// user_categories, bank_integrations, sync_state). Every query scopes by
// the authenticated user id; deletion is a soft is_deleted flag.
package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/ohalushko/moneta/internal/domain"
)

const (
	transactionsTable = "transactions"
	categoriesTable   = "categories"
	overridesTable    = "user_categories"
	walletsTable      = "wallets"
	integrationsTable = "bank_integrations"
	syncStateTable    = "sync_state"
)

// TransactionRow mirrors the finance.transactions schema.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	UserID        string `bigquery:"user_id"`        // REQUIRED
	WalletID      string `bigquery:"wallet_id"`      // REQUIRED

	Type       string  `bigquery:"type"`        // REQUIRED expense|income|transfer
	Amount     float64 `bigquery:"amount"`      // REQUIRED, non-negative
	CategoryID string  `bigquery:"category_id"` // REQUIRED

	Label       string    `bigquery:"label"`
	Description string    `bigquery:"description"`
	Date        time.Time `bigquery:"transaction_date"` // REQUIRED TIMESTAMP

	IsDeleted bool `bigquery:"is_deleted"`
	IsHidden  bool `bigquery:"is_hidden"`

	ExternalID bigquery.NullString `bigquery:"external_id"` // NULLABLE
	Source     bigquery.NullString `bigquery:"source"`      // NULLABLE

	CreatedTS time.Time `bigquery:"created_ts"`
}

// CategoryRow mirrors the finance.categories schema.
type CategoryRow struct {
	CategoryID string `bigquery:"category_id"`
	Name       string `bigquery:"category_name"`
	Icon       string `bigquery:"icon"`
	Color      string `bigquery:"color"`
	IsActive   bool   `bigquery:"is_active"`
}

// UserCategoryRow mirrors the finance.user_categories overlay table.
type UserCategoryRow struct {
	UserID     string              `bigquery:"user_id"`
	CategoryID string              `bigquery:"category_id"`
	CustomName bigquery.NullString `bigquery:"custom_name"`
	IsActive   bigquery.NullBool   `bigquery:"is_active"`
}

// WalletRow mirrors the finance.wallets schema.
type WalletRow struct {
	WalletID  string  `bigquery:"wallet_id"`
	UserID    string  `bigquery:"user_id"`
	Name      string  `bigquery:"wallet_name"`
	Currency  string  `bigquery:"currency"`
	Balance   float64 `bigquery:"balance"`
	IsPrimary bool    `bigquery:"is_primary"`
	IsDeleted bool    `bigquery:"is_deleted"`
}

// BankIntegrationRow mirrors the finance.bank_integrations schema.
type BankIntegrationRow struct {
	IntegrationID string `bigquery:"integration_id"`
	UserID        string `bigquery:"user_id"`
	Provider      string `bigquery:"provider"`
	APIToken      string `bigquery:"api_token"`
	Account       string `bigquery:"account"`
	WalletID      string `bigquery:"wallet_id"`
	IsActive      bool   `bigquery:"is_active"`
}

// SyncStateRow tracks the last successful statement fetch per wallet. This
// is the durable half of the sync cooldown; it survives restarts.
type SyncStateRow struct {
	WalletID   string    `bigquery:"wallet_id"`
	LastSyncTS time.Time `bigquery:"last_sync_ts"`
}

// ToDomain converts a TransactionRow into the domain representation.
func (r *TransactionRow) ToDomain() domain.Transaction {
	t := domain.Transaction{
		ID:          r.TransactionID,
		WalletID:    r.WalletID,
		UserID:      r.UserID,
		Type:        domain.TransactionType(r.Type),
		Amount:      r.Amount,
		CategoryID:  r.CategoryID,
		Label:       r.Label,
		Description: r.Description,
		Date:        r.Date,
		IsDeleted:   r.IsDeleted,
		IsHidden:    r.IsHidden,
	}
	if r.ExternalID.Valid {
		t.ExternalID = r.ExternalID.StringVal
	}
	if r.Source.Valid {
		t.Source = r.Source.StringVal
	}
	return t
}

// FromDomain converts a domain transaction into its row representation.
func FromDomain(t domain.Transaction) *TransactionRow {
	row := &TransactionRow{
		TransactionID: t.ID,
		UserID:        t.UserID,
		WalletID:      t.WalletID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		CategoryID:    t.CategoryID,
		Label:         t.Label,
		Description:   t.Description,
		Date:          t.Date,
		IsDeleted:     t.IsDeleted,
		IsHidden:      t.IsHidden,
		CreatedTS:     time.Now(),
	}
	if t.ExternalID != "" {
		row.ExternalID = bigquery.NullString{StringVal: t.ExternalID, Valid: true}
	}
	if t.Source != "" {
		row.Source = bigquery.NullString{StringVal: t.Source, Valid: true}
	}
	return row
}

// ToDomain converts a CategoryRow into the domain representation.
func (r *CategoryRow) ToDomain() domain.Category {
	return domain.Category{
		ID:       r.CategoryID,
		Name:     r.Name,
		Icon:     r.Icon,
		Color:    r.Color,
		IsActive: r.IsActive,
	}
}

// ToDomain converts a UserCategoryRow into the domain representation.
func (r *UserCategoryRow) ToDomain() domain.CategoryOverride {
	ov := domain.CategoryOverride{
		UserID:     r.UserID,
		CategoryID: r.CategoryID,
	}
	if r.CustomName.Valid {
		name := r.CustomName.StringVal
		ov.CustomName = &name
	}
	if r.IsActive.Valid {
		active := r.IsActive.Bool
		ov.IsActive = &active
	}
	return ov
}

// ToDomain converts a WalletRow into the domain representation.
func (r *WalletRow) ToDomain() domain.Wallet {
	return domain.Wallet{
		ID:        r.WalletID,
		UserID:    r.UserID,
		Name:      r.Name,
		Currency:  r.Currency,
		Balance:   r.Balance,
		IsPrimary: r.IsPrimary,
		IsDeleted: r.IsDeleted,
	}
}

// ToDomain converts a BankIntegrationRow into the domain representation.
func (r *BankIntegrationRow) ToDomain() domain.BankIntegration {
	return domain.BankIntegration{
		ID:       r.IntegrationID,
		UserID:   r.UserID,
		Provider: r.Provider,
		APIToken: r.APIToken,
		Account:  r.Account,
		WalletID: r.WalletID,
		IsActive: r.IsActive,
	}
}
