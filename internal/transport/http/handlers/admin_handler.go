package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/service"
	"github.com/dkovac/orbit/internal/transport/http/middleware"
)

// AdminHandler exposes moderation operations. Routes using it must be
// wrapped in both the auth and admin gates.
type AdminHandler struct {
	userService *service.UserService
	postService *service.PostService
	logger      zerolog.Logger
}

func NewAdminHandler(userService *service.UserService, postService *service.PostService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		postService: postService,
		logger:      logger,
	}
}

func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.userService.Ban(r.Context(), targetID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			h.logger.Error().Err(err).Msg("ban user failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "banned"})
}

func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUser(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	if err := h.postService.Delete(r.Context(), postID, admin); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			h.logger.Error().Err(err).Msg("admin delete post failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
