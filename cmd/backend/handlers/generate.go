package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/hairizuanbinnoorazman/design-testgen/session"
	"github.com/hairizuanbinnoorazman/design-testgen/storage"
)

// multipartOverhead is the room left for form fields next to the image.
const multipartOverhead = 1 << 20

// Generator runs one generation.
type Generator interface {
	Generate(ctx context.Context, req scriptgen.Request) (*scriptgen.Result, error)
}

// GenerateHandler serves synchronous generation requests.
type GenerateHandler struct {
	generator  Generator
	store      scriptgen.Store
	storage    storage.BlobStorage
	sessions   *session.Manager
	validation *scriptgen.ValidationConfig
	logger     logger.Logger
}

// NewGenerateHandler creates a new generation handler.
func NewGenerateHandler(
	generator Generator,
	store scriptgen.Store,
	blobStorage storage.BlobStorage,
	sessions *session.Manager,
	validation *scriptgen.ValidationConfig,
	log logger.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		generator:  generator,
		store:      store,
		storage:    blobStorage,
		sessions:   sessions,
		validation: validation,
		logger:     log,
	}
}

// SectionsResponse carries the three code segments.
type SectionsResponse struct {
	Locators   string `json:"locators"`
	Actions    string `json:"actions"`
	TestScript string `json:"test_script"`
}

// GenerateResponse is returned after a successful generation.
type GenerateResponse struct {
	ID        uuid.UUID           `json:"id"`
	Framework scriptgen.Framework `json:"framework"`
	BaseURL   string              `json:"base_url,omitempty"`
	Script    string              `json:"script"`
	Filename  string              `json:"filename"`
	Files     []string            `json:"files"`
	Warning   string              `json:"warning,omitempty"`
	Sections  SectionsResponse    `json:"sections"`
}

// combinedKey is where the combined response of a generation is kept.
func combinedKey(id uuid.UUID) string {
	return path.Join("generations", id.String(), scriptgen.CombinedFilename)
}

// statusForGenerationError maps generation failures onto HTTP status codes.
func statusForGenerationError(err error) int {
	switch scriptgen.KindOf(err) {
	case scriptgen.KindCallFailed, scriptgen.KindEmptyResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Generate handles POST /api/v1/generate with a multipart body holding
// "image", "framework" and an optional "base_url".
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, _ := GetSessionID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.validation.MaxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.validation.MaxImageBytes + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	image, ok := h.readImage(w, r)
	if !ok {
		return
	}

	framework := scriptgen.FrameworkPlaywright
	if raw := r.FormValue("framework"); raw != "" {
		parsed, err := scriptgen.ParseFramework(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid framework (must be 'playwright' or 'selenium')")
			return
		}
		framework = parsed
	}

	baseURL, err := scriptgen.NormalizeBaseURL(r.FormValue("base_url"), h.validation)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := scriptgen.Request{
		ID:        uuid.New(),
		Image:     image,
		Framework: framework,
		BaseURL:   baseURL,
	}

	recorded := true
	if err := h.store.Create(ctx, scriptgen.NewPendingRecord(req, sessionID)); err != nil {
		recorded = false
		h.logger.Error(ctx, "failed to record generation", map[string]interface{}{
			"error":         err.Error(),
			"generation_id": req.ID.String(),
		})
	}

	result, genErr := h.generator.Generate(ctx, req)

	setters := scriptgen.OutcomeSetters(result, genErr)
	if genErr == nil {
		setters = append(setters, h.storeCombined(ctx, result))
	}
	if recorded {
		if err := h.store.Update(ctx, req.ID, setters...); err != nil {
			h.logger.Error(ctx, "failed to complete generation record", map[string]interface{}{
				"error":         err.Error(),
				"generation_id": req.ID.String(),
			})
		}
	}

	if genErr != nil {
		respondError(w, statusForGenerationError(genErr), genErr.Error())
		return
	}

	if sessionID != "" {
		if err := h.sessions.SaveResult(ctx, sessionID, session.State{
			Framework:    framework,
			BaseURL:      baseURL,
			GenerationID: result.ID,
			Script:       result.Script,
			Files:        result.Files,
			Warning:      result.Warning,
		}); err != nil {
			h.logger.Warn(ctx, "generation not saved to session", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		ID:        result.ID,
		Framework: framework,
		BaseURL:   baseURL,
		Script:    result.Script,
		Filename:  result.Filename,
		Files:     result.Files,
		Warning:   result.Warning,
		Sections: SectionsResponse{
			Locators:   result.Sections.Locators,
			Actions:    result.Sections.Actions,
			TestScript: result.Sections.TestScript,
		},
	})
}

func (h *GenerateHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, scriptgen.ErrImageRequired.Error())
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.validation.MaxImageBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return nil, false
	}

	if err := scriptgen.ValidateImage(data, h.validation); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, scriptgen.ErrImageTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(w, status, err.Error())
		return nil, false
	}
	return data, true
}

// storeCombined keeps the combined response for later download and returns
// the record update describing where it went. A failed upload becomes a
// warning on the record.
func (h *GenerateHandler) storeCombined(ctx context.Context, result *scriptgen.Result) scriptgen.UpdateSetter {
	key := combinedKey(result.ID)
	if err := h.storage.Upload(ctx, key, bytes.NewReader([]byte(result.Script))); err != nil {
		h.logger.Warn(ctx, "failed to store combined output", map[string]interface{}{
			"error": err.Error(),
			"path":  key,
		})
		warning := fmt.Sprintf("combined output not stored: %v", err)
		if result.Warning != "" {
			warning = result.Warning + "; " + warning
		}
		return scriptgen.SetWarning(warning)
	}
	return scriptgen.SetCombinedPath(key, int64(len(result.Script)))
}
