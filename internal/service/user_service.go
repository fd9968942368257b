package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dkovac/orbit/internal/domain"
	"github.com/dkovac/orbit/internal/repository"
)

type UserService struct {
	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	sanitizer *bluemonday.Policy
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		postRepo:  postRepo,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type UpdateProfileInput struct {
	DisplayName string     `json:"display_name"`
	Bio         string     `json:"bio"`
	Location    string     `json:"location"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
}

type MeResponse struct {
	User  *domain.User  `json:"user"`
	Posts []domain.Post `json:"posts"`
}

// Me returns the identity with resolved graph edges and the user's posts.
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if user.Followers, err = s.userRepo.ListFollowers(ctx, userID); err != nil {
		return nil, fmt.Errorf("listing followers: %w", err)
	}
	if user.Following, err = s.userRepo.ListFollowing(ctx, userID); err != nil {
		return nil, fmt.Errorf("listing following: %w", err)
	}
	if user.Followers == nil {
		user.Followers = []uuid.UUID{}
	}
	if user.Following == nil {
		user.Following = []uuid.UUID{}
	}

	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	if posts == nil {
		posts = []domain.Post{}
	}

	return &MeResponse{User: user, Posts: posts}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.DisplayName = input.DisplayName
	user.Bio = s.sanitizer.Sanitize(input.Bio)
	user.Location = input.Location
	user.BirthDate = input.BirthDate

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, url string) error {
	return s.userRepo.SetAvatarURL(ctx, userID, url)
}

func (s *UserService) SetCover(ctx context.Context, userID uuid.UUID, url string) error {
	return s.userRepo.SetCoverURL(ctx, userID, url)
}

// Ban marks the identity as banned. Idempotent; the account is never deleted.
func (s *UserService) Ban(ctx context.Context, targetID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.userRepo.SetBanned(ctx, targetID, true)
}
