package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/dkovac/orbit/internal/domain"
	"github.com/dkovac/orbit/internal/repository"
)

var (
	ErrNotPostOwner    = errors.New("only the post author can perform this action")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("only the comment author can perform this action")
)

type PostService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	notifications *NotificationService
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	notifications *NotificationService,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		notifications: notifications,
		sanitizer:     bluemonday.UGCPolicy(),
		logger:        logger,
	}
}

type CreatePostInput struct {
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url,omitempty"`
}

type EditPostInput struct {
	Content string `json:"content"`
}

type AddCommentInput struct {
	Content string `json:"content"`
}

func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input CreatePostInput) (*domain.Post, error) {
	now := time.Now()
	post := &domain.Post{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Content:   s.sanitizer.Sanitize(input.Content),
		ImageURL:  input.ImageURL,
		Likes:     []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return post, nil
}

func (s *PostService) Edit(ctx context.Context, postID, editorID uuid.UUID, input EditPostInput) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != editorID {
		return nil, ErrNotPostOwner
	}

	content := s.sanitizer.Sanitize(input.Content)
	if err := s.postRepo.UpdateContent(ctx, postID, content); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	post.Content = content
	return post, nil
}

// Delete removes a post when the actor is its author or an admin.
// Comments referencing the post are cascaded away by the storage layer.
func (s *PostService) Delete(ctx context.Context, postID uuid.UUID, actor *domain.User) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != actor.ID && !actor.IsAdmin() {
		return ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	return nil
}

// List returns all posts newest first, with author, likes and comments resolved.
func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		return []domain.Post{}, nil
	}
	return s.attachComments(ctx, posts)
}

// ListByAuthor returns a single user's posts, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		return []domain.Post{}, nil
	}
	return s.attachComments(ctx, posts)
}

func (s *PostService) AddComment(ctx context.Context, postID, authorID uuid.UUID, input AddCommentInput) (*domain.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  authorID,
		Content:   s.sanitizer.Sanitize(input.Content),
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	if err := s.notifications.Notify(ctx, domain.NotificationComment, authorID, post.AuthorID, &postID); err != nil {
		s.logger.Error().Err(err).Msg("comment notification failed")
	}
	return comment, nil
}

func (s *PostService) DeleteComment(ctx context.Context, commentID, actorID uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.AuthorID != actorID {
		return ErrNotCommentOwner
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

func (s *PostService) attachComments(ctx context.Context, posts []domain.Post) ([]domain.Post, error) {
	ids := make([]uuid.UUID, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	comments, err := s.commentRepo.ListByPostIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}

	byPost := make(map[uuid.UUID][]domain.Comment)
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	for i := range posts {
		posts[i].Comments = byPost[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []domain.Comment{}
		}
	}
	return posts, nil
}
