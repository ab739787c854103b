package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/safari-community/internal/apperror"
	"github.com/sakif/safari-community/internal/auth"
	"github.com/sakif/safari-community/internal/model"
	"github.com/sakif/safari-community/internal/service"
)

// PostHandler exposes the post feed, reactions, and comments.
//
// Post create and update accept multipart form data rather than JSON so an
// image can ride along with the text fields.
type PostHandler struct {
	posts      *service.PostService
	uploadsDir string
	logger     *slog.Logger
}

func NewPostHandler(posts *service.PostService, uploadsDir string, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, uploadsDir: uploadsDir, logger: logger}
}

// HandleCreate creates a post from multipart fields: title, content,
// preset_id, is_public, and an optional image file under "file".
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid multipart form"))
		return
	}

	isPublic := true
	if v := r.FormValue("is_public"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, apperror.ValidationFailed("is_public", "is_public must be a boolean"))
			return
		}
		isPublic = parsed
	}

	imageURL, err := h.saveFormImage(r)
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "could not store uploaded image"))
		return
	}

	post, err := h.posts.Create(r.Context(), email,
		r.FormValue("title"), r.FormValue("content"), r.FormValue("preset_id"),
		isPublic, imageURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleList returns the public feed, newest first.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	posts, err := h.posts.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// HandleGet fetches one post. Private posts are visible to their creator
// only, so this route runs under optional auth.
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.EmailFromContext(r.Context())

	post, err := h.posts.Get(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleUpdate applies a partial update from multipart fields. Only fields
// present in the form are touched; an uploaded file replaces the image.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid multipart form"))
		return
	}

	var patch model.PostPatch
	if v, ok := formField(r, "title"); ok {
		patch.Title = &v
	}
	if v, ok := formField(r, "content"); ok {
		patch.Content = &v
	}
	if v, ok := formField(r, "preset_id"); ok {
		patch.PresetID = &v
	}
	if v, ok := formField(r, "is_public"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, apperror.ValidationFailed("is_public", "is_public must be a boolean"))
			return
		}
		patch.IsPublic = &parsed
	}

	imageURL, err := h.saveFormImage(r)
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "could not store uploaded image"))
		return
	}
	if imageURL != "" {
		patch.ImageURL = &imageURL
	}

	post, err := h.posts.Update(r.Context(), email, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post and its comments. Creator only.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := h.posts.Delete(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleReaction records a like (?like=true, the default) or dislike
// (?like=false) on a post.
func (h *PostHandler) HandleReaction(w http.ResponseWriter, r *http.Request) {
	like, err := likeParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.React(r.Context(), chi.URLParam(r, "id"), like); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "reaction recorded"})
}

// HandleScrap bumps a post's scrap counter.
func (h *PostHandler) HandleScrap(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Scrap(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post scrapped"})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// HandleAddComment creates a comment on a post.
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	comment, err := h.posts.AddComment(r.Context(), email, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleListComments returns a post's comments, oldest first. Public.
func (h *PostHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	comments, err := h.posts.ListComments(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleDeleteComment removes a comment. Creator of the comment only.
func (h *PostHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := h.posts.DeleteComment(r.Context(), email, chi.URLParam(r, "commentID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCommentReaction records a like or dislike on a comment.
func (h *PostHandler) HandleCommentReaction(w http.ResponseWriter, r *http.Request) {
	like, err := likeParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.ReactToComment(r.Context(), chi.URLParam(r, "commentID"), like); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "reaction recorded"})
}

// saveFormImage stores the "file" part if present. Returns "" with no error
// when the form carries no file.
func (h *PostHandler) saveFormImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	url, err := saveUpload(h.uploadsDir, file, header)
	if err != nil {
		h.logger.Error("image upload failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	return url, nil
}

// formField reports whether the multipart form carried the named field at
// all, so absent and empty are distinguishable for patch semantics.
func formField(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func likeParam(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("like")
	if v == "" {
		return true, nil
	}
	like, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperror.ValidationFailed("like", "like must be a boolean")
	}
	return like, nil
}
