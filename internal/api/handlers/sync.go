package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/api/middleware"
	"github.com/ohalushko/moneta/internal/domain"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
	syncpkg "github.com/ohalushko/moneta/internal/sync"
)

// WalletSyncer runs one sync pass, satisfied by *sync.Syncer.
type WalletSyncer interface {
	SyncWallet(ctx context.Context, integration domain.BankIntegration, trigger syncpkg.Trigger) (syncpkg.Result, error)
}

// SyncHandler handles bank-sync endpoints. Manual triggers run the sync
// inline so the caller sees the result, including cooldown and throttle
// outcomes.
type SyncHandler struct {
	integrations storage.IntegrationRepository
	syncState    storage.SyncStateRepository
	syncer       WalletSyncer
	log          zerolog.Logger
}

func NewSyncHandler(integrations storage.IntegrationRepository, syncState storage.SyncStateRepository, syncer WalletSyncer, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{
		integrations: integrations,
		syncState:    syncState,
		syncer:       syncer,
		log:          log,
	}
}

// Trigger handles POST /api/sync/{walletID}
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request, walletID string) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	integration, err := h.integrations.GetIntegrationForWallet(ctx, userID, walletID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "No active bank integration for wallet")
			return
		}
		h.log.Error().Err(err).Str("wallet_id", walletID).Msg("Failed to load integration")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to sync wallet")
		return
	}

	result, err := h.syncer.SyncWallet(ctx, integration, syncpkg.TriggerManual)
	if err != nil {
		h.log.Error().Err(err).Str("wallet_id", walletID).Msg("Sync failed")
		middleware.WriteError(w, http.StatusBadGateway, "Sync failed")
		return
	}

	status := http.StatusOK
	if result.OnCooldown || result.Throttled {
		status = http.StatusTooManyRequests
	}
	middleware.WriteJSON(w, status, result)
}

// Status handles GET /api/sync/{walletID}/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request, walletID string) {
	ctx := r.Context()

	// Confirm the wallet belongs to the caller before exposing sync state.
	if _, err := h.integrations.GetIntegrationForWallet(ctx, middleware.UserID(ctx), walletID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "No active bank integration for wallet")
			return
		}
		h.log.Error().Err(err).Str("wallet_id", walletID).Msg("Failed to load integration")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	lastSync, ok, err := h.syncState.GetLastSync(ctx, walletID)
	if err != nil {
		h.log.Error().Err(err).Str("wallet_id", walletID).Msg("Failed to read sync state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read sync status")
		return
	}

	resp := map[string]interface{}{
		"wallet_id":   walletID,
		"ever_synced": ok,
	}
	if ok {
		resp["last_sync"] = lastSync.Format(time.RFC3339)
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
