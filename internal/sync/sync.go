// Package sync reconciles bank statements into the transaction store.
// Statement items are append-only: rows already present for an external id
// are never touched, including soft-deleted ones, so a user's deletions
// stick across re-syncs.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/classify"
	"github.com/ohalushko/moneta/internal/domain"
	"github.com/ohalushko/moneta/internal/monobank"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

// maxWindow caps how far back a single sync may reach. Monobank rejects
// statement requests wider than 31 days.
const maxWindow = 30 * 24 * time.Hour

// Trigger identifies who asked for the sync; manual API calls get a
// shorter cooldown than the background batch.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerScheduled Trigger = "scheduled"
)

// Clock abstracts time.Now so cooldown and window logic is testable.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// StatementFetcher is the provider-side dependency, satisfied by
// *monobank.Client.
type StatementFetcher interface {
	Statement(ctx context.Context, token, account string, from, to time.Time) ([]monobank.StatementItem, error)
}

// Result reports what one sync pass did.
type Result struct {
	Inserted   int  `json:"inserted"`
	Skipped    int  `json:"skipped"`
	Throttled  bool `json:"throttled"`
	OnCooldown bool `json:"on_cooldown"`
}

// denylist drops statement items the user never wants imported, matched
// case-insensitively against the item description.
var denylist = []string{"charity", "благодійн"}

// Syncer pulls statements for one wallet at a time and merges them.
type Syncer struct {
	bank  StatementFetcher
	repo  storage.SyncRepository
	clock Clock
	log   zerolog.Logger

	manualCooldown time.Duration
	batchCooldown  time.Duration

	mu          gosync.Mutex
	lastAttempt map[string]time.Time
}

// Option configures a Syncer.
type Option func(*Syncer)

func WithClock(c Clock) Option {
	return func(s *Syncer) { s.clock = c }
}

func WithCooldowns(manual, batch time.Duration) Option {
	return func(s *Syncer) {
		s.manualCooldown = manual
		s.batchCooldown = batch
	}
}

// NewSyncer creates a Syncer with minute-scale default cooldowns.
func NewSyncer(bank StatementFetcher, repo storage.SyncRepository, log zerolog.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		bank:           bank,
		repo:           repo,
		clock:          realClock{},
		log:            log,
		manualCooldown: time.Minute,
		batchCooldown:  10 * time.Minute,
		lastAttempt:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncWallet fetches the statement window for one integration and appends
// any items not already stored. Rate limiting from the provider is not an
// error; the caller gets Result.Throttled and tries again later.
func (s *Syncer) SyncWallet(ctx context.Context, integration domain.BankIntegration, trigger Trigger) (Result, error) {
	now := s.clock.Now()

	cooldown := s.batchCooldown
	if trigger == TriggerManual {
		cooldown = s.manualCooldown
	}
	if s.onCooldown(ctx, integration.WalletID, now, cooldown) {
		return Result{OnCooldown: true}, nil
	}
	s.recordAttempt(integration.WalletID, now)

	from, err := s.windowStart(ctx, integration, now)
	if err != nil {
		return Result{}, err
	}

	items, err := s.bank.Statement(ctx, integration.APIToken, integration.Account, from, now)
	if err != nil {
		if errors.Is(err, monobank.ErrRateLimited) {
			s.log.Warn().
				Str("wallet_id", integration.WalletID).
				Msg("provider rate limited, skipping this pass")
			return Result{Throttled: true}, nil
		}
		return Result{}, fmt.Errorf("SyncWallet: fetching statement: %w", err)
	}

	existing, err := s.repo.ExternalIDs(ctx, integration.UserID, integration.WalletID)
	if err != nil {
		return Result{}, fmt.Errorf("SyncWallet: loading external ids: %w", err)
	}

	var result Result
	var txs []domain.Transaction
	for _, item := range items {
		if _, ok := existing[item.ID]; ok {
			result.Skipped++
			continue
		}
		if denied(item.Description) {
			result.Skipped++
			continue
		}
		txs = append(txs, fromStatementItem(item, integration))
	}

	if len(txs) > 0 {
		if err := s.repo.InsertTransactions(ctx, txs); err != nil {
			return Result{}, fmt.Errorf("SyncWallet: inserting transactions: %w", err)
		}
	}
	result.Inserted = len(txs)

	if err := s.repo.SetLastSync(ctx, integration.WalletID, now); err != nil {
		return Result{}, fmt.Errorf("SyncWallet: recording sync time: %w", err)
	}

	s.log.Info().
		Str("wallet_id", integration.WalletID).
		Str("trigger", string(trigger)).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Msg("wallet synced")
	return result, nil
}

// onCooldown consults both the in-memory attempt marker and the durable
// sync_state record. A fresh process trusts the durable record.
func (s *Syncer) onCooldown(ctx context.Context, walletID string, now time.Time, cooldown time.Duration) bool {
	s.mu.Lock()
	last, ok := s.lastAttempt[walletID]
	s.mu.Unlock()
	if ok && now.Sub(last) < cooldown {
		return true
	}

	lastSync, ok, err := s.repo.GetLastSync(ctx, walletID)
	if err != nil {
		s.log.Warn().Err(err).Str("wallet_id", walletID).Msg("reading sync state failed, proceeding")
		return false
	}
	return ok && now.Sub(lastSync) < cooldown
}

func (s *Syncer) recordAttempt(walletID string, now time.Time) {
	s.mu.Lock()
	s.lastAttempt[walletID] = now
	s.mu.Unlock()
}

// windowStart picks up from the latest imported transaction, clamped to
// maxWindow back from now.
func (s *Syncer) windowStart(ctx context.Context, integration domain.BankIntegration, now time.Time) (time.Time, error) {
	oldest := now.Add(-maxWindow)

	latest, ok, err := s.repo.LatestImportedDate(ctx, integration.UserID, integration.WalletID)
	if err != nil {
		return time.Time{}, fmt.Errorf("windowStart: reading latest import: %w", err)
	}
	if !ok || latest.Before(oldest) {
		return oldest, nil
	}
	return latest, nil
}

func denied(description string) bool {
	lower := strings.ToLower(description)
	for _, word := range denylist {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// fromStatementItem maps a provider statement item onto a transaction.
// Transfers win over MCC classification so card-to-card moves never show
// up as spending.
func fromStatementItem(item monobank.StatementItem, integration domain.BankIntegration) domain.Transaction {
	t := domain.Transaction{
		ID:         uuid.New().String(),
		WalletID:   integration.WalletID,
		UserID:     integration.UserID,
		Amount:     item.AbsAmount(),
		Label:      item.Description,
		Date:       item.Date(),
		ExternalID: item.ID,
		Source:     "bank_sync",
	}

	switch {
	case classify.IsTransfer(item.Description):
		t.Type = domain.TypeTransfer
		t.CategoryID = domain.CategoryTransfers
	case item.Amount > 0:
		t.Type = domain.TypeIncome
		t.CategoryID = domain.CategoryOther
	default:
		t.Type = domain.TypeExpense
		if id, ok := classify.ByMCC(item.MCC); ok {
			t.CategoryID = id
		} else {
			t.CategoryID = domain.CategoryOther
		}
	}
	return t
}
