package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

var (
	ErrUploadFailed     = errors.New("image upload failed")
	ErrUnsupportedImage = errors.New("payload is not a supported image")
	ErrImageTooLarge    = errors.New("image exceeds the size limit")
)

// ImageHost forwards a binary payload to an external hosting service and
// returns a durable URL.
type ImageHost interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// ImageService relays uploads to the external host. Nothing is stored
// locally; the request blocks until the external call resolves.
type ImageService struct {
	host    ImageHost
	maxSize int64
	logger  zerolog.Logger
}

func NewImageService(host ImageHost, maxSize int64, logger zerolog.Logger) *ImageService {
	return &ImageService{
		host:    host,
		maxSize: maxSize,
		logger:  logger,
	}
}

// Relay validates the payload is an image and forwards it. Failures are
// not retried within the request lifecycle.
func (s *ImageService) Relay(ctx context.Context, data []byte, filename string) (string, error) {
	if int64(len(data)) > s.maxSize {
		return "", ErrImageTooLarge
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedImage, mime.String())
	}

	url, err := s.host.Upload(ctx, data, filename)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("image relay failed")
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return url, nil
}
