package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	Provider     string     `json:"-"`
	Role         string     `json:"role"`
	Banned       bool       `json:"-"`
	Bio          string     `json:"bio,omitempty"`
	Location     string     `json:"location,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	CoverURL     *string    `json:"cover_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	// Resolved graph edges
	Followers []uuid.UUID `json:"followers,omitempty"`
	Following []uuid.UUID `json:"following,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
