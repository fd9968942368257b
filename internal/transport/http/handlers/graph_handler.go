package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/service"
	"github.com/dkovac/orbit/internal/transport/http/middleware"
)

type GraphHandler struct {
	graphService *service.GraphService
	logger       zerolog.Logger
}

func NewGraphHandler(graphService *service.GraphService, logger zerolog.Logger) *GraphHandler {
	return &GraphHandler{graphService: graphService, logger: logger}
}

func (h *GraphHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.graphService.Follow(r.Context(), user.ID, targetID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			writeError(w, http.StatusBadRequest, "INVALID_OPERATION", "Cannot follow yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			h.logger.Error().Err(err).Msg("follow failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "following"})
}

func (h *GraphHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	targetID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.graphService.Unfollow(r.Context(), user.ID, targetID); err != nil {
		h.logger.Error().Err(err).Msg("unfollow failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unfollowed"})
}

func (h *GraphHandler) Like(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid post ID")
		return
	}

	if err := h.graphService.Like(r.Context(), user.ID, postID); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
		} else {
			h.logger.Error().Err(err).Msg("like failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "liked"})
}
