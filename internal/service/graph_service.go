package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/domain"
	"github.com/dkovac/orbit/internal/repository"
)

var (
	ErrSelfFollow   = errors.New("cannot follow yourself")
	ErrUserNotFound = errors.New("user not found")
	ErrPostNotFound = errors.New("post not found")
)

// GraphService maintains follow edges and like sets. Edge mutations are
// idempotent; only a newly created edge fires a notification.
type GraphService struct {
	userRepo      repository.UserRepository
	postRepo      repository.PostRepository
	notifications *NotificationService
	logger        zerolog.Logger
}

func NewGraphService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	notifications *NotificationService,
	logger zerolog.Logger,
) *GraphService {
	return &GraphService{
		userRepo:      userRepo,
		postRepo:      postRepo,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *GraphService) Follow(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return ErrSelfFollow
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return ErrUserNotFound
	}

	created, err := s.userRepo.AddFollow(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("adding follow edge: %w", err)
	}
	if !created {
		// Repeat follow is a no-op, not an error.
		return nil
	}

	// The edge stands even if the notification write fails.
	if err := s.notifications.Notify(ctx, domain.NotificationFollow, actorID, targetID, nil); err != nil {
		s.logger.Error().Err(err).Msg("follow notification failed")
	}
	return nil
}

func (s *GraphService) Unfollow(ctx context.Context, actorID, targetID uuid.UUID) error {
	if err := s.userRepo.RemoveFollow(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("removing follow edge: %w", err)
	}
	return nil
}

func (s *GraphService) Like(ctx context.Context, actorID, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("looking up post: %w", err)
	}
	if post == nil {
		return ErrPostNotFound
	}

	created, err := s.postRepo.AddLike(ctx, postID, actorID)
	if err != nil {
		return fmt.Errorf("adding like: %w", err)
	}
	if !created {
		return nil
	}

	if err := s.notifications.Notify(ctx, domain.NotificationLike, actorID, post.AuthorID, &postID); err != nil {
		s.logger.Error().Err(err).Msg("like notification failed")
	}
	return nil
}
