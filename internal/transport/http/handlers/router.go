package handlers

import (
	"net/http"
)

// RouterDeps bundles the handlers the route table dispatches to.
type RouterDeps struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Posts         *PostHandler
	Graph         *GraphHandler
	Notifications *NotificationHandler
	Admin         *AdminHandler
}

// NewRouter builds the route table. Route strings are part of the API
// contract; clients depend on them.
func NewRouter(deps RouterDeps, auth, admin func(http.Handler) http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return auth(admin(h))
	}

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /register", deps.Auth.Register)
	mux.HandleFunc("POST /login", deps.Auth.Login)
	mux.HandleFunc("POST /login/google", deps.Auth.GoogleLogin)
	mux.HandleFunc("GET /posts", deps.Posts.List)

	// Protected - profile
	mux.Handle("GET /me", protected(deps.Users.Me))
	mux.Handle("PUT /profile", protected(deps.Users.UpdateProfile))
	mux.Handle("PUT /profile/avatar", protected(deps.Users.SetAvatar))
	mux.Handle("PUT /profile/cover", protected(deps.Users.SetCover))

	// Protected - social graph
	mux.Handle("POST /follow/{id}", protected(deps.Graph.Follow))
	mux.Handle("POST /unfollow/{id}", protected(deps.Graph.Unfollow))
	mux.Handle("PUT /posts/{id}/like", protected(deps.Graph.Like))

	// Protected - content
	mux.Handle("POST /posts", protected(deps.Posts.Create))
	mux.Handle("PUT /posts/{id}", protected(deps.Posts.Edit))
	mux.Handle("DELETE /posts/{id}", protected(deps.Posts.Delete))
	mux.Handle("POST /posts/{id}/comments", protected(deps.Posts.AddComment))
	mux.Handle("DELETE /comments/{id}", protected(deps.Posts.DeleteComment))

	// Protected - notifications
	mux.Handle("GET /notifications", protected(deps.Notifications.List))
	mux.Handle("PUT /notifications/read-all", protected(deps.Notifications.MarkAllRead))

	// Admin
	mux.Handle("PUT /admin/users/{id}/ban", adminOnly(deps.Admin.BanUser))
	mux.Handle("DELETE /admin/posts/{id}", adminOnly(deps.Admin.DeletePost))

	return mux
}
