package domain

// Wallet is an account the user tracks money on. At most one non-deleted
// wallet per user is primary, and a primary wallet cannot be deleted
// directly.
type Wallet struct {
	ID        string
	UserID    string
	Name      string
	Currency  string
	Balance   float64
	IsPrimary bool
	IsDeleted bool
}

// BankIntegration connects one wallet to a bank provider. One active
// integration per (user, provider) drives sync for its target wallet.
type BankIntegration struct {
	ID       string
	UserID   string
	Provider string
	APIToken string
	// Account is the provider-side account identifier ("0" selects the
	// default account on Monobank).
	Account  string
	WalletID string
	IsActive bool
}
