package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID   `json:"id"`
	AuthorID  uuid.UUID   `json:"author_id"`
	Content   string      `json:"content"`
	ImageURL  *string     `json:"image_url,omitempty"`
	Likes     []uuid.UUID `json:"likes"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	// Joined fields
	AuthorUsername    string    `json:"author_username,omitempty"`
	AuthorDisplayName string    `json:"author_display_name,omitempty"`
	AuthorAvatarURL   *string   `json:"author_avatar_url,omitempty"`
	Comments          []Comment `json:"comments,omitempty"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields
	AuthorUsername    string `json:"author_username,omitempty"`
	AuthorDisplayName string `json:"author_display_name,omitempty"`
}
