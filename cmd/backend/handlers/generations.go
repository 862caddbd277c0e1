package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/hairizuanbinnoorazman/design-testgen/storage"
)

// GenerationsHandler serves the generation history.
type GenerationsHandler struct {
	store    scriptgen.Store
	storage  storage.BlobStorage
	redirect bool
	logger   logger.Logger
}

// NewGenerationsHandler creates a new history handler. With redirect set,
// downloads answer with a redirect to the storage URL of the combined output
// instead of streaming it through the server.
func NewGenerationsHandler(store scriptgen.Store, blobStorage storage.BlobStorage, redirect bool, log logger.Logger) *GenerationsHandler {
	return &GenerationsHandler{
		store:    store,
		storage:  blobStorage,
		redirect: redirect,
		logger:   log,
	}
}

// List handles GET /api/v1/generations.
func (h *GenerationsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, offset, err := parsePagination(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.store.List(ctx, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list generations")
		return
	}

	total, err := h.store.Count(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count generations")
		return
	}

	respondJSON(w, http.StatusOK, NewPaginatedResponse(records, int(total), limit, offset))
}

// getRecord loads the record named by the {id} path parameter, answering
// 400 or 404 itself when it cannot.
func (h *GenerationsHandler) getRecord(w http.ResponseWriter, r *http.Request) (*scriptgen.GenerationRecord, bool) {
	id, ok := parseUUIDOrRespond(w, r, "id", "generation")
	if !ok {
		return nil, false
	}

	rec, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, scriptgen.ErrGenerationNotFound) {
			respondError(w, http.StatusNotFound, "generation not found")
			return nil, false
		}
		respondError(w, http.StatusInternalServerError, "failed to get generation")
		return nil, false
	}
	return rec, true
}

// GetByID handles GET /api/v1/generations/{id}.
func (h *GenerationsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.getRecord(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Download handles GET /api/v1/generations/{id}/download and streams the
// combined response as combined_output.txt.
func (h *GenerationsHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, ok := h.getRecord(w, r)
	if !ok {
		return
	}
	if rec.CombinedPath == "" {
		respondError(w, http.StatusNotFound, "no output stored for this generation")
		return
	}

	if h.redirect {
		url, err := h.storage.GetURL(ctx, rec.CombinedPath)
		switch {
		case err == nil:
			http.Redirect(w, r, url, http.StatusFound)
			return
		case errors.Is(err, storage.ErrFileNotFound):
			respondError(w, http.StatusNotFound, "output file not found in storage")
			return
		default:
			h.logger.Warn(ctx, "failed to presign combined output; streaming instead", map[string]interface{}{
				"error":         err.Error(),
				"generation_id": rec.ID.String(),
			})
		}
	}

	reader, err := h.storage.Download(ctx, rec.CombinedPath)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			respondError(w, http.StatusNotFound, "output file not found in storage")
			return
		}
		h.logger.Error(ctx, "failed to download combined output", map[string]interface{}{
			"error":         err.Error(),
			"generation_id": rec.ID.String(),
			"path":          rec.CombinedPath,
		})
		respondError(w, http.StatusInternalServerError, "failed to download output")
		return
	}
	defer reader.Close()

	filename := rec.FileName
	if filename == "" {
		filename = scriptgen.CombinedFilename
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error(ctx, "failed to stream combined output", map[string]interface{}{
			"error":         err.Error(),
			"generation_id": rec.ID.String(),
		})
		return
	}

	h.logger.Info(ctx, "combined output downloaded", map[string]interface{}{
		"generation_id": rec.ID.String(),
	})
}

// Delete handles DELETE /api/v1/generations/{id}.
func (h *GenerationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, ok := h.getRecord(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(ctx, rec.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete generation")
		return
	}

	if rec.CombinedPath != "" {
		if err := h.storage.Delete(ctx, rec.CombinedPath); err != nil {
			h.logger.Warn(ctx, "failed to delete combined output from storage", map[string]interface{}{
				"error":         err.Error(),
				"generation_id": rec.ID.String(),
				"path":          rec.CombinedPath,
			})
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
