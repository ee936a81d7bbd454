package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/analytics"
	"github.com/ohalushko/moneta/internal/api/middleware"
	"github.com/ohalushko/moneta/internal/category"
	"github.com/ohalushko/moneta/internal/domain"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

// AnalyticsHandler computes dashboard aggregates. Transactions are fetched
// once per request and fed through the pure aggregation functions; category
// ids in the response are annotated with the caller's effective category
// records.
type AnalyticsHandler struct {
	transactions storage.TransactionRepository
	categories   storage.CategoryRepository
	log          zerolog.Logger
}

func NewAnalyticsHandler(transactions storage.TransactionRepository, categories storage.CategoryRepository, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{transactions: transactions, categories: categories, log: log}
}

// annotatedCategoryAmount is a by-category bar with display fields resolved.
type annotatedCategoryAmount struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Color      string  `json:"color"`
	Amount     float64 `json:"amount"`
}

// ByCategory handles GET /api/analytics/by-category
func (h *AnalyticsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	params, err := parseAnalyticsParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.walletTransactions(r, params.walletID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions for analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute aggregates")
		return
	}

	result := analytics.ByCategory(txs, params.walletID, params.year, params.month, params.kind)

	annotated, err := h.annotate(r, result)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to resolve categories for analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute aggregates")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id":  params.walletID,
		"year":       params.year,
		"month":      int(params.month),
		"kind":       string(params.kind),
		"categories": annotated,
	})
}

// ByDay handles GET /api/analytics/by-day
func (h *AnalyticsHandler) ByDay(w http.ResponseWriter, r *http.Request) {
	params, err := parseAnalyticsParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.walletTransactions(r, params.walletID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions for analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute aggregates")
		return
	}

	result := analytics.ByDay(txs, params.walletID, params.year, params.month, params.kind)
	if result == nil {
		result = []analytics.DayAmount{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id": params.walletID,
		"year":      params.year,
		"month":     int(params.month),
		"kind":      string(params.kind),
		"days":      result,
	})
}

// MonthOverMonth handles GET /api/analytics/month-over-month. The named
// month is compared against the calendar month before it.
func (h *AnalyticsHandler) MonthOverMonth(w http.ResponseWriter, r *http.Request) {
	params, err := parseAnalyticsParams(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.walletTransactions(r, params.walletID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions for analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute aggregates")
		return
	}

	prevYear, prevMonth := previousMonth(params.year, params.month)
	current := analytics.ByCategory(txs, params.walletID, params.year, params.month, params.kind)
	previous := analytics.ByCategory(txs, params.walletID, prevYear, prevMonth, params.kind)

	result := analytics.MonthOverMonth(current, previous)
	if result == nil {
		result = []analytics.CategoryComparison{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id":  params.walletID,
		"year":       params.year,
		"month":      int(params.month),
		"kind":       string(params.kind),
		"comparison": result,
	})
}

// Months handles GET /api/analytics/months
func (h *AnalyticsHandler) Months(w http.ResponseWriter, r *http.Request) {
	walletID := r.URL.Query().Get("wallet_id")
	if walletID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "wallet_id is required")
		return
	}

	lookbackYears := 2
	if v := r.URL.Query().Get("lookback_years"); v != "" {
		years, err := strconv.Atoi(v)
		if err != nil || years <= 0 {
			middleware.WriteError(w, http.StatusBadRequest, "invalid lookback_years")
			return
		}
		lookbackYears = years
	}

	txs, err := h.walletTransactions(r, walletID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions for analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list months")
		return
	}

	months := analytics.AvailableMonths(txs, walletID, lookbackYears, time.Now())
	if months == nil {
		months = []analytics.Month{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id": walletID,
		"months":    months,
	})
}

// Unusual handles GET /api/analytics/unusual
func (h *AnalyticsHandler) Unusual(w http.ResponseWriter, r *http.Request) {
	walletID := r.URL.Query().Get("wallet_id")
	if walletID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "wallet_id is required")
		return
	}

	txs, err := h.walletTransactions(r, walletID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions for analytics")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to flag transactions")
		return
	}

	flagged := analytics.Unusual(txs)
	if flagged == nil {
		flagged = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wallet_id":    walletID,
		"transactions": flagged,
		"count":        len(flagged),
	})
}

func (h *AnalyticsHandler) walletTransactions(r *http.Request, walletID string) ([]domain.Transaction, error) {
	ctx := r.Context()
	return h.transactions.QueryTransactions(ctx, domain.TransactionFilter{
		UserID:   middleware.UserID(ctx),
		WalletID: walletID,
	})
}

func (h *AnalyticsHandler) annotate(r *http.Request, amounts []analytics.CategoryAmount) ([]annotatedCategoryAmount, error) {
	ctx := r.Context()

	categories, err := h.categories.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := h.categories.ListUserOverrides(ctx, middleware.UserID(ctx))
	if err != nil {
		return nil, err
	}
	overrideMap := category.OverrideMap(overrides)

	annotated := make([]annotatedCategoryAmount, 0, len(amounts))
	for _, a := range amounts {
		resolved := category.Resolve(a.CategoryID, overrideMap, categories)
		annotated = append(annotated, annotatedCategoryAmount{
			CategoryID: a.CategoryID,
			Name:       resolved.Name,
			Icon:       resolved.Icon,
			Color:      resolved.Color,
			Amount:     a.Amount,
		})
	}
	return annotated, nil
}

type analyticsParams struct {
	walletID string
	year     int
	month    time.Month
	kind     analytics.Kind
}

func parseAnalyticsParams(r *http.Request) (analyticsParams, error) {
	query := r.URL.Query()

	walletID := query.Get("wallet_id")
	if walletID == "" {
		return analyticsParams{}, errors.New("wallet_id is required")
	}

	now := time.Now()
	year := now.Year()
	month := now.Month()

	if v := query.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return analyticsParams{}, errors.New("invalid year")
		}
		year = y
	}
	if v := query.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return analyticsParams{}, errors.New("invalid month")
		}
		month = time.Month(m)
	}

	kind := analytics.KindExpense
	if v := query.Get("kind"); v != "" {
		switch analytics.Kind(v) {
		case analytics.KindExpense, analytics.KindIncome, analytics.KindNet:
			kind = analytics.Kind(v)
		default:
			return analyticsParams{}, errors.New("kind must be expense, income or net")
		}
	}

	return analyticsParams{walletID: walletID, year: year, month: month, kind: kind}, nil
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
