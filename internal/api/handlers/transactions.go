// Package handlers implements the HTTP API surface. Every handler reads
// the authenticated user id from the request context (set by the Auth
// middleware) and scopes storage access by it.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/api/middleware"
	"github.com/ohalushko/moneta/internal/domain"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	repo storage.TransactionRepository
	log  zerolog.Logger
}

func NewTransactionsHandler(repo storage.TransactionRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{repo: repo, log: log}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseTransactionFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.UserID = middleware.UserID(ctx)

	transactions, err := h.repo.QueryTransactions(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		WalletID    string  `json:"wallet_id"`
		Type        string  `json:"type"`
		Amount      float64 `json:"amount"`
		CategoryID  string  `json:"category_id"`
		Label       string  `json:"label"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
		IsHidden    bool    `json:"is_hidden"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.WalletID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "wallet_id is required")
		return
	}
	if req.Amount <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	txType := domain.TransactionType(req.Type)
	switch txType {
	case domain.TypeExpense, domain.TypeIncome, domain.TypeTransfer:
	default:
		middleware.WriteError(w, http.StatusBadRequest, "type must be expense, income or transfer")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, want RFC3339")
			return
		}
		date = parsed
	}

	categoryID := req.CategoryID
	if categoryID == "" {
		categoryID = domain.CategoryOther
	}
	if txType == domain.TypeTransfer {
		categoryID = domain.CategoryTransfers
	}

	tx := domain.Transaction{
		ID:          uuid.New().String(),
		WalletID:    req.WalletID,
		UserID:      middleware.UserID(ctx),
		Type:        txType,
		Amount:      req.Amount,
		CategoryID:  categoryID,
		Label:       req.Label,
		Description: req.Description,
		Date:        date,
		IsHidden:    req.IsHidden,
		Source:      "manual",
	}

	if err := h.repo.InsertTransactions(ctx, []domain.Transaction{tx}); err != nil {
		h.log.Error().Err(err).Msg("Failed to insert transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, transactionID string) {
	ctx := r.Context()

	if err := h.repo.SoftDeleteTransaction(ctx, middleware.UserID(ctx), transactionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"transaction_id": transactionID,
		"status":         "deleted",
	})
}

// UpdateCategory handles PUT /api/transactions/{id}/category
func (h *TransactionsHandler) UpdateCategory(w http.ResponseWriter, r *http.Request, transactionID string) {
	ctx := r.Context()

	var req struct {
		CategoryID string `json:"category_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CategoryID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "category_id is required")
		return
	}

	if err := h.repo.UpdateTransactionCategory(ctx, middleware.UserID(ctx), transactionID, req.CategoryID); err != nil {
		h.log.Error().Err(err).Str("transaction_id", transactionID).Msg("Failed to update category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"transaction_id": transactionID,
		"category_id":    req.CategoryID,
	})
}

// parseTransactionFilter builds a storage filter from list query params.
func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	query := r.URL.Query()
	filter := domain.TransactionFilter{
		WalletID:   query.Get("wallet_id"),
		CategoryID: query.Get("category_id"),
		Search:     query.Get("search"),
	}

	if v := query.Get("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("invalid from date, want YYYY-MM-DD")
		}
		filter.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("invalid to date, want YYYY-MM-DD")
		}
		// Inclusive end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}
	if v := query.Get("min_amount"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("invalid min_amount")
		}
		filter.MinAmount = &min
	}
	if v := query.Get("max_amount"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errors.New("invalid max_amount")
		}
		filter.MaxAmount = &max
	}
	if v := query.Get("include_hidden"); v != "" {
		filter.IncludeHidden = v == "true" || v == "1"
	}
	if v := query.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	if v := query.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			filter.Offset = offset
		}
	}
	return filter, nil
}
