package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dkovac/orbit/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// UpsertByEmail atomically resolves-or-creates a user keyed by email.
	// Concurrent first logins for the same email must yield a single row.
	UpsertByEmail(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error
	SetCoverURL(ctx context.Context, id uuid.UUID, url string) error
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error

	// Follow edges. AddFollow reports whether a new edge was created;
	// repeat calls are no-ops, not errors.
	AddFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	RemoveFollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	ListFollowers(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	ListFollowing(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	// Delete removes the post; comments cascade at the storage level.
	Delete(ctx context.Context, id uuid.UUID) error
	// AddLike reports whether the like was newly recorded.
	AddLike(ctx context.Context, postID, userID uuid.UUID) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]domain.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, receiverID uuid.UUID) error
}
