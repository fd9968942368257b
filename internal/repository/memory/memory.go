// Package memory provides in-memory repository implementations with the
// same semantics as the postgres ones, including atomic set-union behavior
// on follow edges and likes. Intended for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dkovac/orbit/internal/domain"
)

type edge struct {
	from uuid.UUID
	to   uuid.UUID
}

type Store struct {
	mu            sync.Mutex
	users         map[uuid.UUID]domain.User
	follows       map[edge]int // value is insertion order
	posts         map[uuid.UUID]domain.Post
	likes         map[edge]int // post -> user
	comments      map[uuid.UUID]domain.Comment
	notifications map[uuid.UUID]domain.Notification
	seq           int
	order         map[uuid.UUID]int // insertion order for stable sorting
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]domain.User),
		follows:       make(map[edge]int),
		posts:         make(map[uuid.UUID]domain.Post),
		likes:         make(map[edge]int),
		comments:      make(map[uuid.UUID]domain.Comment),
		notifications: make(map[uuid.UUID]domain.Notification),
		order:         make(map[uuid.UUID]int),
	}
}

func (s *Store) next() int {
	s.seq++
	return s.seq
}

// UserRepo implements repository.UserRepository.
type UserRepo struct{ store *Store }

func NewUserRepo(store *Store) *UserRepo { return &UserRepo{store: store} }

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate key value violates unique constraint %q", "users_email_key")
		}
		if u.Username == user.Username {
			return fmt.Errorf("duplicate key value violates unique constraint %q", "users_username_key")
		}
	}
	s.users[user.ID] = *user
	s.order[user.ID] = s.next()
	return nil
}

func (r *UserRepo) UpsertByEmail(_ context.Context, user *domain.User) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			existing := u
			return &existing, nil
		}
	}
	s.users[user.ID] = *user
	s.order[user.ID] = s.next()
	created := *user
	return &created, nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *UserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[user.ID]
	if !ok {
		return nil
	}
	u.DisplayName = user.DisplayName
	u.Bio = user.Bio
	u.Location = user.Location
	u.BirthDate = user.BirthDate
	s.users[user.ID] = u
	return nil
}

func (r *UserRepo) SetAvatarURL(_ context.Context, id uuid.UUID, url string) error {
	return r.update(id, func(u *domain.User) { u.AvatarURL = &url })
}

func (r *UserRepo) SetCoverURL(_ context.Context, id uuid.UUID, url string) error {
	return r.update(id, func(u *domain.User) { u.CoverURL = &url })
}

func (r *UserRepo) SetBanned(_ context.Context, id uuid.UUID, banned bool) error {
	return r.update(id, func(u *domain.User) { u.Banned = banned })
}

func (r *UserRepo) update(id uuid.UUID, apply func(*domain.User)) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	apply(&u)
	s.users[id] = u
	return nil
}

func (r *UserRepo) AddFollow(_ context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e := edge{from: followerID, to: followeeID}
	if _, ok := s.follows[e]; ok {
		return false, nil
	}
	s.follows[e] = s.next()
	return true, nil
}

func (r *UserRepo) RemoveFollow(_ context.Context, followerID, followeeID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.follows, edge{from: followerID, to: followeeID})
	return nil
}

func (r *UserRepo) ListFollowers(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.edges(func(e edge) (uuid.UUID, bool) { return e.from, e.to == id })
}

func (r *UserRepo) ListFollowing(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return r.edges(func(e edge) (uuid.UUID, bool) { return e.to, e.from == id })
}

func (r *UserRepo) edges(pick func(edge) (uuid.UUID, bool)) ([]uuid.UUID, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		id    uuid.UUID
		order int
	}
	var entries []entry
	for e, ord := range s.follows {
		if id, ok := pick(e); ok {
			entries = append(entries, entry{id: id, order: ord})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order > entries[j].order })

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids, nil
}

// PostRepo implements repository.PostRepository.
type PostRepo struct{ store *Store }

func NewPostRepo(store *Store) *PostRepo { return &PostRepo{store: store} }

func (r *PostRepo) Create(_ context.Context, post *domain.Post) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *post
	p.Likes = nil
	s.posts[p.ID] = p
	s.order[p.ID] = s.next()
	return nil
}

func (r *PostRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	resolved := s.resolvePost(p)
	return &resolved, nil
}

func (r *PostRepo) List(_ context.Context) ([]domain.Post, error) {
	return r.list(func(domain.Post) bool { return true })
}

func (r *PostRepo) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]domain.Post, error) {
	return r.list(func(p domain.Post) bool { return p.AuthorID == authorID })
}

func (r *PostRepo) list(match func(domain.Post) bool) ([]domain.Post, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []domain.Post
	for _, p := range s.posts {
		if match(p) {
			posts = append(posts, s.resolvePost(p))
		}
	}
	// Newest first; insertion order breaks creation-time ties.
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return s.order[posts[i].ID] > s.order[posts[j].ID]
	})
	return posts, nil
}

func (r *PostRepo) UpdateContent(_ context.Context, id uuid.UUID, content string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil
	}
	p.Content = content
	s.posts[id] = p
	return nil
}

func (r *PostRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, id)
	for e := range s.likes {
		if e.from == id {
			delete(s.likes, e)
		}
	}
	// Cascade, matching the ON DELETE CASCADE foreign key.
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (r *PostRepo) AddLike(_ context.Context, postID, userID uuid.UUID) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e := edge{from: postID, to: userID}
	if _, ok := s.likes[e]; ok {
		return false, nil
	}
	s.likes[e] = s.next()
	return true, nil
}

// resolvePost attaches author fields and the like set. Caller holds the lock.
func (s *Store) resolvePost(p domain.Post) domain.Post {
	if author, ok := s.users[p.AuthorID]; ok {
		p.AuthorUsername = author.Username
		p.AuthorDisplayName = author.DisplayName
		p.AuthorAvatarURL = author.AvatarURL
	}

	type entry struct {
		id    uuid.UUID
		order int
	}
	var entries []entry
	for e, ord := range s.likes {
		if e.from == p.ID {
			entries = append(entries, entry{id: e.to, order: ord})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })

	p.Likes = make([]uuid.UUID, len(entries))
	for i, e := range entries {
		p.Likes[i] = e.id
	}
	return p
}

// CommentRepo implements repository.CommentRepository.
type CommentRepo struct{ store *Store }

func NewCommentRepo(store *Store) *CommentRepo { return &CommentRepo{store: store} }

func (r *CommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments[comment.ID] = *comment
	s.order[comment.ID] = s.next()
	return nil
}

func (r *CommentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, nil
	}
	if author, ok := s.users[c.AuthorID]; ok {
		c.AuthorUsername = author.Username
		c.AuthorDisplayName = author.DisplayName
	}
	return &c, nil
}

func (r *CommentRepo) ListByPostIDs(_ context.Context, postIDs []uuid.UUID) ([]domain.Comment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(postIDs))
	for _, id := range postIDs {
		wanted[id] = true
	}

	var comments []domain.Comment
	for _, c := range s.comments {
		if !wanted[c.PostID] {
			continue
		}
		if author, ok := s.users[c.AuthorID]; ok {
			c.AuthorUsername = author.Username
			c.AuthorDisplayName = author.DisplayName
		}
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool {
		return s.order[comments[i].ID] < s.order[comments[j].ID]
	})
	return comments, nil
}

func (r *CommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.comments, id)
	return nil
}

// NotificationRepo implements repository.NotificationRepository.
type NotificationRepo struct{ store *Store }

func NewNotificationRepo(store *Store) *NotificationRepo {
	return &NotificationRepo{store: store}
}

func (r *NotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[n.ID] = *n
	s.order[n.ID] = s.next()
	return nil
}

func (r *NotificationRepo) ListByReceiver(_ context.Context, receiverID uuid.UUID) ([]domain.Notification, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var ns []domain.Notification
	for _, n := range s.notifications {
		if n.ReceiverID != receiverID {
			continue
		}
		if sender, ok := s.users[n.SenderID]; ok {
			n.SenderUsername = sender.Username
			n.SenderDisplayName = sender.DisplayName
		}
		ns = append(ns, n)
	}
	sort.Slice(ns, func(i, j int) bool {
		return s.order[ns[i].ID] > s.order[ns[j].ID]
	})
	return ns, nil
}

func (r *NotificationRepo) MarkAllRead(_ context.Context, receiverID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.notifications {
		if n.ReceiverID == receiverID && !n.IsRead {
			n.IsRead = true
			s.notifications[id] = n
		}
	}
	return nil
}
