package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/api/middleware"
	"github.com/ohalushko/moneta/internal/domain"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

// WalletsHandler handles wallet-related endpoints.
type WalletsHandler struct {
	repo storage.WalletRepository
	log  zerolog.Logger
}

func NewWalletsHandler(repo storage.WalletRepository, log zerolog.Logger) *WalletsHandler {
	return &WalletsHandler{repo: repo, log: log}
}

// List handles GET /api/wallets
func (h *WalletsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wallets, err := h.repo.ListWallets(ctx, middleware.UserID(ctx))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list wallets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list wallets")
		return
	}

	if wallets == nil {
		wallets = []domain.Wallet{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wallets": wallets,
		"count":   len(wallets),
	})
}

// Create handles POST /api/wallets
func (h *WalletsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	var req struct {
		Name      string  `json:"name"`
		Currency  string  `json:"currency"`
		Balance   float64 `json:"balance"`
		IsPrimary bool    `json:"is_primary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Currency == "" {
		req.Currency = "UAH"
	}

	wallet := domain.Wallet{
		ID:       uuid.New().String(),
		UserID:   userID,
		Name:     req.Name,
		Currency: req.Currency,
		Balance:  req.Balance,
	}

	// A user's first wallet becomes primary automatically.
	existing, err := h.repo.ListWallets(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list wallets before create")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create wallet")
		return
	}
	wallet.IsPrimary = len(existing) == 0

	if err := h.repo.InsertWallet(ctx, wallet); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert wallet")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create wallet")
		return
	}

	// Explicit promotion demotes the previous primary.
	if req.IsPrimary && !wallet.IsPrimary {
		if err := h.repo.SetPrimaryWallet(ctx, userID, wallet.ID); err != nil {
			h.log.Error().Err(err).Str("wallet_id", wallet.ID).Msg("Failed to set primary wallet")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to create wallet")
			return
		}
		wallet.IsPrimary = true
	}

	middleware.WriteJSON(w, http.StatusCreated, wallet)
}

// Delete handles DELETE /api/wallets/{id}
func (h *WalletsHandler) Delete(w http.ResponseWriter, r *http.Request, walletID string) {
	ctx := r.Context()

	err := h.repo.SoftDeleteWallet(ctx, middleware.UserID(ctx), walletID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, "Wallet not found")
		case errors.Is(err, domain.ErrPrimaryWallet):
			middleware.WriteError(w, http.StatusConflict, "Primary wallet cannot be deleted; promote another wallet first")
		default:
			h.log.Error().Err(err).Str("wallet_id", walletID).Msg("Failed to delete wallet")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete wallet")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"wallet_id": walletID,
		"status":    "deleted",
	})
}

// SetPrimary handles PUT /api/wallets/{id}/primary
func (h *WalletsHandler) SetPrimary(w http.ResponseWriter, r *http.Request, walletID string) {
	ctx := r.Context()

	if err := h.repo.SetPrimaryWallet(ctx, middleware.UserID(ctx), walletID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Wallet not found")
			return
		}
		h.log.Error().Err(err).Str("wallet_id", walletID).Msg("Failed to set primary wallet")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to set primary wallet")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"wallet_id": walletID,
		"status":    "primary",
	})
}
