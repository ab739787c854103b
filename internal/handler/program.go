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

// ProgramHandler exposes program CRUD endpoints.
type ProgramHandler struct {
	programs *service.ProgramService
	logger   *slog.Logger
}

func NewProgramHandler(programs *service.ProgramService, logger *slog.Logger) *ProgramHandler {
	return &ProgramHandler{programs: programs, logger: logger}
}

type createProgramRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"categoryId"`
}

// HandleCreate creates a program. An omitted categoryId sends the program to
// the caller's fallback category.
func (h *ProgramHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var req createProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	program, err := h.programs.Create(r.Context(), email, req.Name, req.CategoryID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, program)
}

// HandleList lists programs, optionally filtered by ?category_id=. Public.
func (h *ProgramHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	programs, err := h.programs.List(r.Context(), r.URL.Query().Get("category_id"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, programs)
}

// HandleGet fetches one program by id. Public.
func (h *ProgramHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	program, err := h.programs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, program)
}

// HandleUpdate applies a partial update. Creator only.
func (h *ProgramHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var patch model.ProgramPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	program, err := h.programs.Update(r.Context(), email, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, program)
}

// HandleDelete removes a program. Creator only.
func (h *ProgramHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := h.programs.Delete(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
