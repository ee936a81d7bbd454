package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ohalushko/moneta/internal/api/middleware"
	"github.com/ohalushko/moneta/internal/jobs"
)

// maxUploadBytes bounds statement uploads. Real exports are well under a
// megabyte; 16 MiB leaves headroom for years of history.
const maxUploadBytes = 16 << 20

// StatementStore persists uploaded files, satisfied by *statements.Store.
type StatementStore interface {
	Put(ctx context.Context, userID, filename string, r io.Reader) (string, error)
}

// ImportHandler accepts spreadsheet uploads and enqueues import jobs.
type ImportHandler struct {
	store     StatementStore
	publisher jobs.Publisher
	log       zerolog.Logger
}

func NewImportHandler(store StatementStore, publisher jobs.Publisher, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{store: store, publisher: publisher, log: log}
}

// Import handles POST /api/import. The multipart body carries the file
// under "file" and the target wallet under "wallet_id". The file goes to
// the statement bucket first; parsing happens in a background job.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	walletID := r.FormValue("wallet_id")
	if walletID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "wallet_id is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	uri, err := h.store.Put(ctx, userID, header.Filename, file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store uploaded statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store file")
		return
	}

	job := &jobs.StatementJob{
		Type:     jobs.JobTypeImportStatement,
		UserID:   userID,
		WalletID: walletID,
		FileURI:  uri,
	}
	if err := h.publisher.PublishStatementJob(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("wallet_id", walletID).
		Str("file_uri", uri).
		Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":    job.JobID,
		"wallet_id": walletID,
		"status":    string(job.Status),
	})
}
