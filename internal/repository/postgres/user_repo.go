package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/orbit/internal/domain"
)

const userColumns = `id, email, username, display_name, password_hash, provider, role, banned,
	bio, location, birth_date, avatar_url, cover_url, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, display_name, password_hash, provider, role, banned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.DisplayName,
		user.PasswordHash, user.Provider, user.Role, user.Banned,
		user.CreatedAt, user.UpdatedAt,
	)
	return err
}

// UpsertByEmail inserts the user or, when the email is already registered,
// returns the existing row. A single statement so concurrent first logins
// for the same email cannot create duplicates.
func (r *UserRepo) UpsertByEmail(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, username, display_name, password_hash, provider, role, banned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING ` + userColumns

	var u domain.User
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.Username, user.DisplayName,
		user.PasswordHash, user.Provider, user.Role, user.Banned,
		user.CreatedAt, user.UpdatedAt,
	).Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName,
		&u.PasswordHash, &u.Provider, &u.Role, &u.Banned,
		&u.Bio, &u.Location, &u.BirthDate, &u.AvatarURL, &u.CoverURL,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET display_name = $2, bio = $3, location = $4, birth_date = $5, updated_at = NOW()
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, user.ID, user.DisplayName, user.Bio, user.Location, user.BirthDate)
	return err
}

func (r *UserRepo) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

func (r *UserRepo) SetCoverURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET cover_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

func (r *UserRepo) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET banned = $2, updated_at = NOW() WHERE id = $1`, id, banned)
	return err
}

// AddFollow records the edge if absent. ON CONFLICT DO NOTHING gives
// set-union semantics under concurrent requests.
func (r *UserRepo) AddFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		followerID, followeeID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepo) RemoveFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	return err
}

func (r *UserRepo) ListFollowers(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.scanEdges(ctx,
		`SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at DESC`, id)
}

func (r *UserRepo) ListFollowing(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.scanEdges(ctx,
		`SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at DESC`, id)
}

func (r *UserRepo) scanEdges(ctx context.Context, query string, id uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var edge uuid.UUID
		if err := rows.Scan(&edge); err != nil {
			return nil, err
		}
		ids = append(ids, edge)
	}
	return ids, rows.Err()
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName,
		&u.PasswordHash, &u.Provider, &u.Role, &u.Banned,
		&u.Bio, &u.Location, &u.BirthDate, &u.AvatarURL, &u.CoverURL,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
