package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/service"
	"github.com/dkovac/orbit/internal/transport/http/middleware"
	"github.com/dkovac/orbit/pkg/validator"
)

type PostHandler struct {
	postService  *service.PostService
	imageService *service.ImageService
	logger       zerolog.Logger
}

func NewPostHandler(postService *service.PostService, imageService *service.ImageService, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		postService:  postService,
		imageService: imageService,
		logger:       logger,
	}
}

// Create accepts either a JSON body or multipart form data with an
// optional image. An attached image is relayed to the external host
// before the post is persisted; the relay blocks the request.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var input service.CreatePostInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid multipart form")
			return
		}
		input.Content = r.FormValue("content")

		if file, header, err := r.FormFile("image"); err == nil {
			data, readErr := io.ReadAll(file)
			file.Close()
			if readErr != nil {
				writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Reading image file failed")
				return
			}

			url, relayErr := h.imageService.Relay(r.Context(), data, header.Filename)
			if relayErr != nil {
				writeRelayError(w, h.logger, relayErr)
				return
			}
			input.ImageURL = &url
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	if errs := validator.ValidatePost(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	post, err := h.postService.Create(r.Context(), user.ID, input)
	if err != nil {
		h.logger.Error().Err(err).Msg("create post failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list posts failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	var input service.EditPostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidatePost(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	post, err := h.postService.Edit(r.Context(), postID, user.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the author can edit this post")
		default:
			h.logger.Error().Err(err).Msg("edit post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), postID, user); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		case errors.Is(err, service.ErrNotPostOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the author or an admin can delete this post")
		default:
			h.logger.Error().Err(err).Msg("delete post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	var input service.AddCommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateComment(input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	comment, err := h.postService.AddComment(r.Context(), postID, user.ID, input)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			h.logger.Error().Err(err).Msg("add comment failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	commentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid comment ID")
		return
	}

	if err := h.postService.DeleteComment(r.Context(), commentID, user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Comment not found")
		case errors.Is(err, service.ErrNotCommentOwner):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the author can delete this comment")
		default:
			h.logger.Error().Err(err).Msg("delete comment failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
