package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/service"
	"github.com/dkovac/orbit/internal/transport/http/middleware"
	"github.com/dkovac/orbit/pkg/validator"
)

type UserHandler struct {
	userService  *service.UserService
	imageService *service.ImageService
	logger       zerolog.Logger
}

func NewUserHandler(userService *service.UserService, imageService *service.ImageService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		imageService: imageService,
		logger:       logger,
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	resp, err := h.userService.Me(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Msg("me failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProfile(input.DisplayName, input.Bio, input.Location); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.userService.UpdateProfile(r.Context(), user.ID, input); err != nil {
		h.logger.Error().Err(err).Msg("update profile failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *UserHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	h.relayProfileImage(w, r, h.userService.SetAvatar)
}

func (h *UserHandler) SetCover(w http.ResponseWriter, r *http.Request) {
	h.relayProfileImage(w, r, h.userService.SetCover)
}

// relayProfileImage relays the uploaded binary to the external host and
// stores the returned URL via the supplied setter.
func (h *UserHandler) relayProfileImage(w http.ResponseWriter, r *http.Request, store func(context.Context, uuid.UUID, string) error) {
	user := middleware.GetUser(r.Context())

	data, filename, err := readImageFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", err.Error())
		return
	}

	url, err := h.imageService.Relay(r.Context(), data, filename)
	if err != nil {
		writeRelayError(w, h.logger, err)
		return
	}

	if err := store(r.Context(), user.ID, url); err != nil {
		h.logger.Error().Err(err).Msg("storing profile image url failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// readImageFile extracts the "image" part from a multipart request.
func readImageFile(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, "", fmt.Errorf("expected multipart form data")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", fmt.Errorf("missing image file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("reading image file failed")
	}
	return data, header.Filename, nil
}

func writeRelayError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedImage):
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Payload is not a supported image")
	case errors.Is(err, service.ErrImageTooLarge):
		writeError(w, http.StatusBadRequest, "INVALID_IMAGE", "Image exceeds the size limit")
	case errors.Is(err, service.ErrUploadFailed):
		writeError(w, http.StatusBadGateway, "UPLOAD_FAILED", "Image hosting service rejected the upload")
	default:
		logger.Error().Err(err).Msg("image relay failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
