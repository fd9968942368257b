package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/orbit/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (id, author_id, content, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query,
		post.ID, post.AuthorID, post.Content, post.ImageURL, post.CreatedAt, post.UpdatedAt,
	)
	return err
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.content, p.image_url, p.created_at, p.updated_at,
			u.username, u.display_name, u.avatar_url
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1`

	var p domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.AuthorID, &p.Content, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		&p.AuthorUsername, &p.AuthorDisplayName, &p.AuthorAvatarURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	likes, err := r.likesFor(ctx, []uuid.UUID{p.ID})
	if err != nil {
		return nil, err
	}
	p.Likes = likes[p.ID]
	if p.Likes == nil {
		p.Likes = []uuid.UUID{}
	}
	return &p, nil
}

func (r *PostRepo) List(ctx context.Context) ([]domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.content, p.image_url, p.created_at, p.updated_at,
			u.username, u.display_name, u.avatar_url
		FROM posts p
		JOIN users u ON p.author_id = u.id
		ORDER BY p.created_at DESC`
	return r.listPosts(ctx, query)
}

func (r *PostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.content, p.image_url, p.created_at, p.updated_at,
			u.username, u.display_name, u.avatar_url
		FROM posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC`
	return r.listPosts(ctx, query, authorID)
}

func (r *PostRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE posts SET content = $2, updated_at = NOW() WHERE id = $1`, id, content)
	return err
}

func (r *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Comments and likes cascade via foreign keys.
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

// AddLike records the like if absent, reporting whether a row was created.
func (r *PostRepo) AddLike(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostRepo) listPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	var ids []uuid.UUID
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.Content, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
			&p.AuthorUsername, &p.AuthorDisplayName, &p.AuthorAvatarURL,
		); err != nil {
			return nil, err
		}
		p.Likes = []uuid.UUID{}
		posts = append(posts, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	likes, err := r.likesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if l, ok := likes[posts[i].ID]; ok {
			posts[i].Likes = l
		}
	}
	return posts, nil
}

func (r *PostRepo) likesFor(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT post_id, user_id
		FROM post_likes
		WHERE post_id = ANY($1::uuid[])
		ORDER BY created_at ASC`,
		uuidStrings(postIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := make(map[uuid.UUID][]uuid.UUID)
	for rows.Next() {
		var postID, userID uuid.UUID
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, err
		}
		likes[postID] = append(likes[postID], userID)
	}
	return likes, rows.Err()
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
