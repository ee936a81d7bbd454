package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/api/middleware"
	"github.com/ohalushko/moneta/internal/domain"
	syncpkg "github.com/ohalushko/moneta/internal/sync"
)

const testUser = "user-1"

// authedRequest builds a request the way the Auth middleware would hand
// it to a handler.
func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.Header.Set("X-User-ID", testUser)

	rec := httptest.NewRecorder()
	var out *http.Request
	middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out = r
	})).ServeHTTP(rec, r)
	return out
}

type fakeTransactionRepo struct {
	transactions []domain.Transaction
	inserted     []domain.Transaction
	deleted      []string
	queryErr     error
	gotFilter    domain.TransactionFilter
}

func (f *fakeTransactionRepo) InsertTransactions(_ context.Context, txs []domain.Transaction) error {
	f.inserted = append(f.inserted, txs...)
	return nil
}

func (f *fakeTransactionRepo) QueryTransactions(_ context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	f.gotFilter = filter
	return f.transactions, f.queryErr
}

func (f *fakeTransactionRepo) SoftDeleteTransaction(_ context.Context, userID, transactionID string) error {
	if transactionID == "missing" {
		return domain.ErrNotFound
	}
	f.deleted = append(f.deleted, transactionID)
	return nil
}

func (f *fakeTransactionRepo) UpdateTransactionCategory(_ context.Context, userID, transactionID, categoryID string) error {
	return nil
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()

	called := false
	middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("handler was called without a user id")
	}
}

func TestTransactionsListScopesToUser(t *testing.T) {
	repo := &fakeTransactionRepo{transactions: []domain.Transaction{
		{ID: "t1", UserID: testUser, Amount: 10},
	}}
	h := NewTransactionsHandler(repo, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/transactions?wallet_id=w1&from=2026-01-01&to=2026-01-31", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if repo.gotFilter.UserID != testUser {
		t.Errorf("filter user = %q, want %q", repo.gotFilter.UserID, testUser)
	}
	if repo.gotFilter.WalletID != "w1" {
		t.Errorf("filter wallet = %q, want w1", repo.gotFilter.WalletID)
	}
	if repo.gotFilter.From == nil || repo.gotFilter.To == nil {
		t.Fatal("expected from and to to be set")
	}
	// The to bound must cover the whole last day.
	if repo.gotFilter.To.Day() != 31 || repo.gotFilter.To.Hour() != 23 {
		t.Errorf("to = %v, want end of Jan 31", repo.gotFilter.To)
	}
}

func TestTransactionsListRejectsBadDates(t *testing.T) {
	h := NewTransactionsHandler(&fakeTransactionRepo{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/transactions?from=yesterday", ""))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestTransactionsCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid expense",
			body:       `{"wallet_id":"w1","type":"expense","amount":120.50,"label":"Сільпо"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing wallet",
			body:       `{"type":"expense","amount":10}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative amount",
			body:       `{"wallet_id":"w1","type":"expense","amount":-5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown type",
			body:       `{"wallet_id":"w1","type":"refund","amount":5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "transfer forces transfers category",
			body:       `{"wallet_id":"w1","type":"transfer","amount":500,"category_id":"` + domain.CategoryCafe + `"}`,
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeTransactionRepo{}
			h := NewTransactionsHandler(repo, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.Create(rec, authedRequest(http.MethodPost, "/api/transactions", tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			if len(repo.inserted) != 1 {
				t.Fatalf("inserted %d transactions, want 1", len(repo.inserted))
			}
			tx := repo.inserted[0]
			if tx.UserID != testUser {
				t.Errorf("user = %q, want %q", tx.UserID, testUser)
			}
			if tx.Source != "manual" {
				t.Errorf("source = %q, want manual", tx.Source)
			}
			if tx.Type == domain.TypeTransfer && tx.CategoryID != domain.CategoryTransfers {
				t.Errorf("transfer category = %q, want %q", tx.CategoryID, domain.CategoryTransfers)
			}
		})
	}
}

func TestTransactionsDeleteNotFound(t *testing.T) {
	h := NewTransactionsHandler(&fakeTransactionRepo{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Delete(rec, authedRequest(http.MethodDelete, "/api/transactions/missing", ""), "missing")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

type fakeWalletRepo struct {
	wallets    []domain.Wallet
	inserted   []domain.Wallet
	primarySet []string
	deleteErr  error
}

func (f *fakeWalletRepo) ListWallets(_ context.Context, userID string) ([]domain.Wallet, error) {
	return f.wallets, nil
}

func (f *fakeWalletRepo) GetWallet(_ context.Context, userID, walletID string) (domain.Wallet, error) {
	for _, w := range f.wallets {
		if w.ID == walletID {
			return w, nil
		}
	}
	return domain.Wallet{}, domain.ErrNotFound
}

func (f *fakeWalletRepo) InsertWallet(_ context.Context, wallet domain.Wallet) error {
	f.inserted = append(f.inserted, wallet)
	return nil
}

func (f *fakeWalletRepo) SoftDeleteWallet(_ context.Context, userID, walletID string) error {
	return f.deleteErr
}

func (f *fakeWalletRepo) SetPrimaryWallet(_ context.Context, userID, walletID string) error {
	f.primarySet = append(f.primarySet, walletID)
	return nil
}

func TestWalletsCreateFirstWalletIsPrimary(t *testing.T) {
	repo := &fakeWalletRepo{}
	h := NewWalletsHandler(repo, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/wallets", `{"name":"Main"}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d wallets, want 1", len(repo.inserted))
	}
	w := repo.inserted[0]
	if !w.IsPrimary {
		t.Error("first wallet should be primary")
	}
	if w.Currency != "UAH" {
		t.Errorf("currency = %q, want UAH default", w.Currency)
	}
}

func TestWalletsCreateExplicitPrimaryPromotes(t *testing.T) {
	repo := &fakeWalletRepo{wallets: []domain.Wallet{{ID: "w1", IsPrimary: true}}}
	h := NewWalletsHandler(repo, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/wallets", `{"name":"Savings","is_primary":true}`))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if len(repo.primarySet) != 1 {
		t.Fatalf("SetPrimaryWallet called %d times, want 1", len(repo.primarySet))
	}
}

func TestWalletsDelete(t *testing.T) {
	tests := []struct {
		name       string
		deleteErr  error
		wantStatus int
	}{
		{"ok", nil, http.StatusOK},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"primary wallet", domain.ErrPrimaryWallet, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWalletsHandler(&fakeWalletRepo{deleteErr: tt.deleteErr}, zerolog.Nop())

			rec := httptest.NewRecorder()
			h.Delete(rec, authedRequest(http.MethodDelete, "/api/wallets/w1", ""), "w1")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

type fakeCategoryRepo struct {
	categories []domain.Category
	overrides  []domain.CategoryOverride
	upserted   []domain.CategoryOverride
}

func (f *fakeCategoryRepo) ListActiveCategories(_ context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) ListUserOverrides(_ context.Context, userID string) ([]domain.CategoryOverride, error) {
	return f.overrides, nil
}

func (f *fakeCategoryRepo) UpsertUserOverride(_ context.Context, ov domain.CategoryOverride) error {
	f.upserted = append(f.upserted, ov)
	return nil
}

func TestCategoriesListAppliesOverrides(t *testing.T) {
	custom := "Їжа"
	repo := &fakeCategoryRepo{
		categories: []domain.Category{
			{ID: domain.CategoryGroceries, Name: "Groceries", IsActive: true},
		},
		overrides: []domain.CategoryOverride{
			{UserID: testUser, CategoryID: domain.CategoryGroceries, CustomName: &custom},
		},
	}
	h := NewCategoriesHandler(repo, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/categories", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), custom) {
		t.Errorf("response missing custom name %q: %s", custom, rec.Body.String())
	}
}

func TestCategoriesUpdateOverrideRequiresFields(t *testing.T) {
	h := NewCategoriesHandler(&fakeCategoryRepo{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.UpdateOverride(rec, authedRequest(http.MethodPut, "/api/categories/x", `{}`), domain.CategoryGroceries)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

type fakeIntegrationRepo struct {
	integration domain.BankIntegration
	err         error
}

func (f *fakeIntegrationRepo) ListActiveIntegrations(_ context.Context) ([]domain.BankIntegration, error) {
	return []domain.BankIntegration{f.integration}, nil
}

func (f *fakeIntegrationRepo) GetIntegrationForWallet(_ context.Context, userID, walletID string) (domain.BankIntegration, error) {
	return f.integration, f.err
}

type fakeSyncStateRepo struct {
	lastSync time.Time
	ok       bool
}

func (f *fakeSyncStateRepo) GetLastSync(_ context.Context, walletID string) (time.Time, bool, error) {
	return f.lastSync, f.ok, nil
}

func (f *fakeSyncStateRepo) SetLastSync(_ context.Context, walletID string, at time.Time) error {
	return nil
}

type fakeSyncer struct {
	result syncpkg.Result
	err    error
}

func (f *fakeSyncer) SyncWallet(_ context.Context, integration domain.BankIntegration, trigger syncpkg.Trigger) (syncpkg.Result, error) {
	return f.result, f.err
}

func TestSyncTrigger(t *testing.T) {
	tests := []struct {
		name           string
		integrationErr error
		result         syncpkg.Result
		wantStatus     int
	}{
		{"synced", nil, syncpkg.Result{Inserted: 3}, http.StatusOK},
		{"on cooldown", nil, syncpkg.Result{OnCooldown: true}, http.StatusTooManyRequests},
		{"throttled by bank", nil, syncpkg.Result{Throttled: true}, http.StatusTooManyRequests},
		{"no integration", domain.ErrNotFound, syncpkg.Result{}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSyncHandler(
				&fakeIntegrationRepo{err: tt.integrationErr},
				&fakeSyncStateRepo{},
				&fakeSyncer{result: tt.result},
				zerolog.Nop(),
			)

			rec := httptest.NewRecorder()
			h.Trigger(rec, authedRequest(http.MethodPost, "/api/sync/w1", ""), "w1")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSyncStatus(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	h := NewSyncHandler(
		&fakeIntegrationRepo{},
		&fakeSyncStateRepo{lastSync: at, ok: true},
		&fakeSyncer{},
		zerolog.Nop(),
	)

	rec := httptest.NewRecorder()
	h.Status(rec, authedRequest(http.MethodGet, "/api/sync/w1/status", ""), "w1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "2026-03-10T12:00:00Z") {
		t.Errorf("response missing last sync time: %s", rec.Body.String())
	}
}
