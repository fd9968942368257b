package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/orbit/internal/domain"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

func (r *CommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt,
	)
	return err
}

func (r *CommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
			u.username, u.display_name
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.id = $1`

	var c domain.Comment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
		&c.AuthorUsername, &c.AuthorDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommentRepo) ListByPostIDs(ctx context.Context, postIDs []uuid.UUID) ([]domain.Comment, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
			u.username, u.display_name
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.post_id = ANY($1::uuid[])
		ORDER BY c.created_at ASC`

	rows, err := r.pool.Query(ctx, query, uuidStrings(postIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
			&c.AuthorUsername, &c.AuthorDisplayName,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}
