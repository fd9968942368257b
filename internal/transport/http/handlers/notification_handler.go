package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/service"
	"github.com/dkovac/orbit/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              zerolog.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	ns, err := h.notificationService.ListFor(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("list notifications failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, ns)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.notificationService.MarkAllRead(r.Context(), user.ID); err != nil {
		h.logger.Error().Err(err).Msg("mark notifications read failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}
