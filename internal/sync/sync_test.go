package sync

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/domain"
	"github.com/ohalushko/moneta/internal/monobank"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type fakeBank struct {
	items []monobank.StatementItem
	err   error

	gotFrom time.Time
	gotTo   time.Time
	calls   int
}

func (b *fakeBank) Statement(_ context.Context, _, _ string, from, to time.Time) ([]monobank.StatementItem, error) {
	b.calls++
	b.gotFrom = from
	b.gotTo = to
	if b.err != nil {
		return nil, b.err
	}
	return b.items, nil
}

type fakeRepo struct {
	existing   map[string]bool
	latest     time.Time
	hasLatest  bool
	lastSync   time.Time
	hasSync    bool
	inserted   []domain.Transaction
	syncSetTo  time.Time
	syncWasSet bool
}

func (r *fakeRepo) InsertTransactions(_ context.Context, txs []domain.Transaction) error {
	r.inserted = append(r.inserted, txs...)
	return nil
}

func (r *fakeRepo) ExternalIDs(_ context.Context, _, _ string) (map[string]bool, error) {
	if r.existing == nil {
		return map[string]bool{}, nil
	}
	return r.existing, nil
}

func (r *fakeRepo) LatestImportedDate(_ context.Context, _, _ string) (time.Time, bool, error) {
	return r.latest, r.hasLatest, nil
}

func (r *fakeRepo) GetLastSync(_ context.Context, _ string) (time.Time, bool, error) {
	return r.lastSync, r.hasSync, nil
}

func (r *fakeRepo) SetLastSync(_ context.Context, _ string, ts time.Time) error {
	r.syncSetTo = ts
	r.syncWasSet = true
	return nil
}

var testIntegration = domain.BankIntegration{
	ID:       "int-1",
	UserID:   "user-1",
	Provider: "monobank",
	APIToken: "token",
	Account:  "0",
	WalletID: "wallet-1",
	IsActive: true,
}

func newTestSyncer(bank StatementFetcher, repo *fakeRepo, now time.Time) *Syncer {
	return NewSyncer(bank, repo, zerolog.Nop(), WithClock(fixedClock{now: now}))
}

func TestSyncWalletClassifiesItems(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	bank := &fakeBank{items: []monobank.StatementItem{
		{ID: "a1", Time: now.Add(-time.Hour).Unix(), Description: "Silpo", MCC: 5411, Amount: -15050},
		{ID: "a2", Time: now.Add(-2 * time.Hour).Unix(), Description: "Salary", MCC: 0, Amount: 500000},
		{ID: "a3", Time: now.Add(-3 * time.Hour).Unix(), Description: "Переказ на картку", MCC: 4829, Amount: -20000},
	}}
	repo := &fakeRepo{}

	res, err := newTestSyncer(bank, repo, now).SyncWallet(context.Background(), testIntegration, TriggerManual)
	if err != nil {
		t.Fatalf("SyncWallet: %v", err)
	}
	if res.Inserted != 3 || res.Skipped != 0 {
		t.Fatalf("got inserted=%d skipped=%d, want 3/0", res.Inserted, res.Skipped)
	}
	if len(repo.inserted) != 3 {
		t.Fatalf("got %d stored transactions, want 3", len(repo.inserted))
	}

	groceries := repo.inserted[0]
	if groceries.Type != domain.TypeExpense || groceries.CategoryID != domain.CategoryGroceries {
		t.Errorf("groceries item: got type=%s category=%s", groceries.Type, groceries.CategoryID)
	}
	if groceries.Amount != 150.50 {
		t.Errorf("groceries amount = %v, want 150.50", groceries.Amount)
	}
	if groceries.ExternalID != "a1" || groceries.Source != "bank_sync" {
		t.Errorf("groceries provenance: external=%q source=%q", groceries.ExternalID, groceries.Source)
	}

	income := repo.inserted[1]
	if income.Type != domain.TypeIncome || income.CategoryID != domain.CategoryOther {
		t.Errorf("income item: got type=%s category=%s", income.Type, income.CategoryID)
	}

	transfer := repo.inserted[2]
	if transfer.Type != domain.TypeTransfer || transfer.CategoryID != domain.CategoryTransfers {
		t.Errorf("transfer item: got type=%s category=%s", transfer.Type, transfer.CategoryID)
	}

	if !repo.syncWasSet || !repo.syncSetTo.Equal(now) {
		t.Errorf("sync state not recorded: set=%v ts=%v", repo.syncWasSet, repo.syncSetTo)
	}
}

func TestSyncWalletSkipsExistingAndDenied(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	bank := &fakeBank{items: []monobank.StatementItem{
		{ID: "seen", Time: now.Unix(), Description: "Cafe", MCC: 5812, Amount: -5000},
		{ID: "deleted", Time: now.Unix(), Description: "Cafe", MCC: 5812, Amount: -5000},
		{ID: "denied", Time: now.Unix(), Description: "Благодійний внесок", MCC: 8398, Amount: -10000},
		{ID: "fresh", Time: now.Unix(), Description: "Cafe", MCC: 5812, Amount: -5000},
	}}
	// The deleted row must stay deleted; sync never resurrects it.
	repo := &fakeRepo{existing: map[string]bool{"seen": false, "deleted": true}}

	res, err := newTestSyncer(bank, repo, now).SyncWallet(context.Background(), testIntegration, TriggerManual)
	if err != nil {
		t.Fatalf("SyncWallet: %v", err)
	}
	if res.Inserted != 1 || res.Skipped != 3 {
		t.Fatalf("got inserted=%d skipped=%d, want 1/3", res.Inserted, res.Skipped)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].ExternalID != "fresh" {
		t.Fatalf("stored wrong transactions: %+v", repo.inserted)
	}
}

func TestSyncWalletCooldown(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		trigger  Trigger
		lastSync time.Time
		hasSync  bool
		want     bool
	}{
		{"manual recent sync", TriggerManual, now.Add(-30 * time.Second), true, true},
		{"manual stale sync", TriggerManual, now.Add(-2 * time.Minute), true, false},
		{"scheduled recent sync", TriggerScheduled, now.Add(-5 * time.Minute), true, true},
		{"scheduled stale sync", TriggerScheduled, now.Add(-15 * time.Minute), true, false},
		{"never synced", TriggerManual, time.Time{}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &fakeBank{}
			repo := &fakeRepo{lastSync: tt.lastSync, hasSync: tt.hasSync}

			res, err := newTestSyncer(bank, repo, now).SyncWallet(context.Background(), testIntegration, tt.trigger)
			if err != nil {
				t.Fatalf("SyncWallet: %v", err)
			}
			if res.OnCooldown != tt.want {
				t.Errorf("OnCooldown = %v, want %v", res.OnCooldown, tt.want)
			}
			if tt.want && bank.calls != 0 {
				t.Errorf("provider called %d times during cooldown", bank.calls)
			}
		})
	}
}

func TestSyncWalletInMemoryCooldown(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	bank := &fakeBank{}
	repo := &fakeRepo{}
	s := newTestSyncer(bank, repo, now)

	if _, err := s.SyncWallet(context.Background(), testIntegration, TriggerManual); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// Same clock instant, so well inside the manual cooldown. The durable
	// marker is ignored here because the in-memory one fires first.
	repo.hasSync = false
	res, err := s.SyncWallet(context.Background(), testIntegration, TriggerManual)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !res.OnCooldown {
		t.Fatal("second immediate sync was not put on cooldown")
	}
	if bank.calls != 1 {
		t.Errorf("provider called %d times, want 1", bank.calls)
	}
}

func TestSyncWalletRateLimited(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	bank := &fakeBank{err: monobank.ErrRateLimited}
	repo := &fakeRepo{}

	res, err := newTestSyncer(bank, repo, now).SyncWallet(context.Background(), testIntegration, TriggerManual)
	if err != nil {
		t.Fatalf("rate limiting must not surface as an error, got %v", err)
	}
	if !res.Throttled {
		t.Fatal("Throttled not set")
	}
	if len(repo.inserted) != 0 || repo.syncWasSet {
		t.Error("state mutated on a throttled pass")
	}
}

func TestSyncWalletWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		latest    time.Time
		hasLatest bool
		wantFrom  time.Time
	}{
		{"no prior imports", time.Time{}, false, now.Add(-maxWindow)},
		{"recent prior import", now.Add(-48 * time.Hour), true, now.Add(-48 * time.Hour)},
		{"ancient prior import clamped", now.Add(-90 * 24 * time.Hour), true, now.Add(-maxWindow)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &fakeBank{}
			repo := &fakeRepo{latest: tt.latest, hasLatest: tt.hasLatest}

			if _, err := newTestSyncer(bank, repo, now).SyncWallet(context.Background(), testIntegration, TriggerManual); err != nil {
				t.Fatalf("SyncWallet: %v", err)
			}
			if !bank.gotFrom.Equal(tt.wantFrom) {
				t.Errorf("from = %v, want %v", bank.gotFrom, tt.wantFrom)
			}
			if !bank.gotTo.Equal(now) {
				t.Errorf("to = %v, want %v", bank.gotTo, now)
			}
		})
	}
}
