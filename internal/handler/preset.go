package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/auth"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/service"
)

// PresetHandler exposes preset CRUD plus the share-as-post endpoint.
type PresetHandler struct {
	presets *service.PresetService
	posts   *service.PostService
	logger  *slog.Logger
}

func NewPresetHandler(presets *service.PresetService, posts *service.PostService, logger *slog.Logger) *PresetHandler {
	return &PresetHandler{presets: presets, posts: posts, logger: logger}
}

type createPresetRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryIDs []string `json:"categoryIds"`
	Programs    []string `json:"programs"`
	IsPublic    bool     `json:"isPublic"`
}

// HandleCreate creates a preset owned by the caller.
func (h *PresetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	preset, err := h.presets.Create(r.Context(), email, req.Name, req.Description,
		req.CategoryIDs, req.Programs, req.IsPublic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, preset)
}

// HandleList lists presets. Public.
func (h *PresetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	presets, err := h.presets.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, presets)
}

// HandleGet fetches one preset by id. Public.
func (h *PresetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	preset, err := h.presets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preset)
}

// HandleUpdate applies a partial update. Creator only.
func (h *PresetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var patch model.PresetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	preset, err := h.presets.Update(r.Context(), email, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preset)
}

// HandleDelete removes a preset. Creator only.
func (h *PresetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := h.presets.Delete(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleShare publishes a preset to the feed as a generated public post.
func (h *PresetHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	post, err := h.posts.CreateFromPreset(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}
