package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/api/middleware"
	"github.com/ohalushko/moneta/internal/category"
	"github.com/ohalushko/moneta/internal/domain"
	storage "github.com/ohalushko/moneta/internal/storage/bigquery"
)

// CategoriesHandler handles category-related endpoints.
type CategoriesHandler struct {
	repo storage.CategoryRepository
	log  zerolog.Logger
}

func NewCategoriesHandler(repo storage.CategoryRepository, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{repo: repo, log: log}
}

// List handles GET /api/categories. The response is the global category
// table with the caller's overrides already applied.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	categories, err := h.repo.ListActiveCategories(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	overrides, err := h.repo.ListUserOverrides(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list category overrides")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	merged := category.Merge(categories, category.OverrideMap(overrides))
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": merged,
		"count":      len(merged),
	})
}

// UpdateOverride handles PUT /api/categories/{id}
func (h *CategoriesHandler) UpdateOverride(w http.ResponseWriter, r *http.Request, categoryID string) {
	ctx := r.Context()

	var req struct {
		CustomName *string `json:"custom_name"`
		IsActive   *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomName == nil && req.IsActive == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	ov := domain.CategoryOverride{
		UserID:     middleware.UserID(ctx),
		CategoryID: categoryID,
		CustomName: req.CustomName,
		IsActive:   req.IsActive,
	}
	if err := h.repo.UpsertUserOverride(ctx, ov); err != nil {
		h.log.Error().Err(err).Str("category_id", categoryID).Msg("Failed to upsert category override")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update category")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"category_id": categoryID,
		"status":      "updated",
	})
}
