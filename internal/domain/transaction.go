package domain

import (
	"time"
)

// TransactionType tells how a transaction's amount should be interpreted.
// Amounts are stored unsigned; the sign semantics derive from the type.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeTransfer TransactionType = "transfer"
)

// Transaction is one money movement on a wallet. Records are soft-deleted
// (IsDeleted) rather than removed, so bank sync can honor local deletions.
type Transaction struct {
	ID          string
	WalletID    string
	UserID      string
	Type        TransactionType
	Amount      float64 // non-negative; see TransactionType
	CategoryID  string
	Label       string
	Description string
	Date        time.Time
	IsDeleted   bool
	IsHidden    bool

	// ExternalID is the bank-side statement id for imported transactions,
	// empty for manual entries.
	ExternalID string
	// Source records how the transaction entered the system
	// ("bank_sync", "xlsx_import", empty for manual entry).
	Source string
}

// TransactionFilter enumerates the query surface exposed to the UI.
// Zero values mean "no constraint"; UserID is always required.
type TransactionFilter struct {
	UserID        string
	WalletID      string
	CategoryID    string
	From          *time.Time
	To            *time.Time
	MinAmount     *float64
	MaxAmount     *float64
	Search        string
	IncludeHidden bool
	Limit         int
	Offset        int
}
