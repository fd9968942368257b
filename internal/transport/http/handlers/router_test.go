package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dkovac/orbit/internal/domain"
	"github.com/dkovac/orbit/internal/repository/memory"
	"github.com/dkovac/orbit/internal/service"
	"github.com/dkovac/orbit/internal/transport/http/middleware"
)

const apiSecret = "router-test-secret"

type stubHost struct {
	url string
	err error
}

func (s *stubHost) Upload(_ context.Context, _ []byte, _ string) (string, error) {
	return s.url, s.err
}

type stubVerifier struct {
	identity *service.VerifiedIdentity
	err      error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*service.VerifiedIdentity, error) {
	return s.identity, s.err
}

type testAPI struct {
	mux      *http.ServeMux
	store    *memory.Store
	users    *memory.UserRepo
	host     *stubHost
	verifier *stubVerifier
}

func newTestAPI() *testAPI {
	logger := zerolog.Nop()

	store := memory.NewStore()
	users := memory.NewUserRepo(store)
	posts := memory.NewPostRepo(store)
	comments := memory.NewCommentRepo(store)
	notifications := memory.NewNotificationRepo(store)

	host := &stubHost{url: "https://i.example/hosted.png"}
	verifier := &stubVerifier{}

	notificationService := service.NewNotificationService(notifications)
	authService := service.NewAuthService(users, verifier, apiSecret)
	userService := service.NewUserService(users, posts)
	postService := service.NewPostService(posts, comments, notificationService, logger)
	graphService := service.NewGraphService(users, posts, notificationService, logger)
	imageService := service.NewImageService(host, 1<<20, logger)

	deps := RouterDeps{
		Auth:          NewAuthHandler(authService, logger),
		Users:         NewUserHandler(userService, imageService, logger),
		Posts:         NewPostHandler(postService, imageService, logger),
		Graph:         NewGraphHandler(graphService, logger),
		Notifications: NewNotificationHandler(notificationService, logger),
		Admin:         NewAdminHandler(userService, postService, logger),
	}

	mux := NewRouter(deps, middleware.Auth(apiSecret, users), middleware.RequireAdmin)
	return &testAPI{mux: mux, store: store, users: users, host: host, verifier: verifier}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// register signs up a user through the API and returns the auth response.
func (a *testAPI) register(t *testing.T, username string) *service.AuthResponse {
	t.Helper()

	w := a.do(t, http.MethodPost, "/register", "", map[string]string{
		"email":        username + "@example.com",
		"username":     username,
		"display_name": username,
		"password":     "Sup3rSecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[*service.AuthResponse](t, w)
	require.NotEmpty(t, resp.AccessToken)
	return resp
}

// seedAdmin plants an admin identity directly and mints a credential for it.
func (a *testAPI) seedAdmin(t *testing.T) (*domain.User, string) {
	t.Helper()

	admin := &domain.User{
		ID:       uuid.New(),
		Email:    "admin@example.com",
		Username: "admin",
		Role:     domain.RoleAdmin,
	}
	require.NoError(t, a.users.Create(context.Background(), admin))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": admin.ID.String(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(apiSecret))
	require.NoError(t, err)
	return admin, signed
}

func TestHealth(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	w := api.do(t, http.MethodGet, "/health", "", nil)
	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), "ok")
}

func TestRegisterLoginPostFlow(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	alice := api.register(t, "alice")

	// Fresh login with the same credentials.
	w := api.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Sup3rSecret",
	})
	req.Equal(http.StatusOK, w.Code)
	login := decodeBody[*service.AuthResponse](t, w)
	req.Equal(alice.User.ID, login.User.ID)

	// Publish a post.
	w = api.do(t, http.MethodPost, "/posts", login.AccessToken, map[string]string{"content": "first post"})
	req.Equal(http.StatusOK, w.Code, w.Body.String())
	post := decodeBody[*domain.Post](t, w)
	req.Equal("first post", post.Content)

	// The feed is public.
	w = api.do(t, http.MethodGet, "/posts", "", nil)
	req.Equal(http.StatusOK, w.Code)
	feed := decodeBody[[]domain.Post](t, w)
	req.Len(feed, 1)
	req.Equal("alice", feed[0].AuthorUsername)
	req.Empty(feed[0].Likes)
	req.NotNil(feed[0].Likes)

	// /me includes the user's own posts.
	w = api.do(t, http.MethodGet, "/me", login.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)
	me := decodeBody[*service.MeResponse](t, w)
	req.Equal(alice.User.ID, me.User.ID)
	req.Len(me.Posts, 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	api.register(t, "alice")

	w := api.do(t, http.MethodPost, "/register", "", map[string]string{
		"email":        "alice@example.com",
		"username":     "alice2",
		"display_name": "Alice Again",
		"password":     "Sup3rSecret",
	})
	req.Equal(http.StatusBadRequest, w.Code)
	req.Contains(w.Body.String(), "DUPLICATE_IDENTITY")
}

func TestGoogleLogin(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()
	api.verifier.identity = &service.VerifiedIdentity{Email: "carol@example.com", Name: "Carol"}

	w := api.do(t, http.MethodPost, "/login/google", "", map[string]string{"token": "provider-token"})
	req.Equal(http.StatusOK, w.Code, w.Body.String())
	first := decodeBody[*service.AuthResponse](t, w)
	req.Equal("carol@example.com", first.User.Email)

	// Logging in again resolves the same identity.
	w = api.do(t, http.MethodPost, "/login/google", "", map[string]string{"token": "provider-token"})
	req.Equal(http.StatusOK, w.Code)
	second := decodeBody[*service.AuthResponse](t, w)
	req.Equal(first.User.ID, second.User.ID)
}

func TestProtectedRoutesRequireCredential(t *testing.T) {
	api := newTestAPI()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodPut, "/profile"},
		{http.MethodPost, "/posts"},
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/follow/" + uuid.NewString()},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := api.do(t, p.method, p.path, "", nil)
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestFollowNotificationFlow(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	alice := api.register(t, "alice")
	bob := api.register(t, "bob")

	// Bob follows Alice, twice. The second call changes nothing.
	w := api.do(t, http.MethodPost, "/follow/"+alice.User.ID.String(), bob.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)
	w = api.do(t, http.MethodPost, "/follow/"+alice.User.ID.String(), bob.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)

	// Self-follow is rejected.
	w = api.do(t, http.MethodPost, "/follow/"+bob.User.ID.String(), bob.AccessToken, nil)
	req.Equal(http.StatusBadRequest, w.Code)
	req.Contains(w.Body.String(), "INVALID_OPERATION")

	// Alice sees a single unread follow notification.
	w = api.do(t, http.MethodGet, "/notifications", alice.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)
	ns := decodeBody[[]domain.Notification](t, w)
	req.Len(ns, 1)
	req.Equal(domain.NotificationFollow, ns[0].Type)
	req.Equal("bob", ns[0].SenderUsername)
	req.False(ns[0].IsRead)

	// Mark everything read.
	w = api.do(t, http.MethodPut, "/notifications/read-all", alice.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/notifications", alice.AccessToken, nil)
	ns = decodeBody[[]domain.Notification](t, w)
	req.Len(ns, 1)
	req.True(ns[0].IsRead)

	// Follower shows up in /me and disappears after unfollow.
	w = api.do(t, http.MethodGet, "/me", alice.AccessToken, nil)
	me := decodeBody[*service.MeResponse](t, w)
	req.Equal([]uuid.UUID{bob.User.ID}, me.User.Followers)

	w = api.do(t, http.MethodPost, "/unfollow/"+alice.User.ID.String(), bob.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/me", alice.AccessToken, nil)
	me = decodeBody[*service.MeResponse](t, w)
	req.Empty(me.User.Followers)
}

func TestLikeAndCommentFlow(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	alice := api.register(t, "alice")
	bob := api.register(t, "bob")

	w := api.do(t, http.MethodPost, "/posts", alice.AccessToken, map[string]string{"content": "hello"})
	req.Equal(http.StatusOK, w.Code)
	post := decodeBody[*domain.Post](t, w)

	// Bob likes twice; the like set still holds him once.
	w = api.do(t, http.MethodPut, "/posts/"+post.ID.String()+"/like", bob.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)
	w = api.do(t, http.MethodPut, "/posts/"+post.ID.String()+"/like", bob.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/posts/"+post.ID.String()+"/comments", bob.AccessToken, map[string]string{"content": "nice"})
	req.Equal(http.StatusOK, w.Code)
	comment := decodeBody[*domain.Comment](t, w)
	req.Equal("nice", comment.Content)

	w = api.do(t, http.MethodGet, "/posts", "", nil)
	feed := decodeBody[[]domain.Post](t, w)
	req.Len(feed, 1)
	req.Equal([]uuid.UUID{bob.User.ID}, feed[0].Likes)
	req.Len(feed[0].Comments, 1)
	req.Equal("bob", feed[0].Comments[0].AuthorUsername)

	// One like and one comment notification for the author.
	w = api.do(t, http.MethodGet, "/notifications", alice.AccessToken, nil)
	ns := decodeBody[[]domain.Notification](t, w)
	req.Len(ns, 2)
	req.Equal(domain.NotificationComment, ns[0].Type)
	req.Equal(domain.NotificationLike, ns[1].Type)
}

func TestEditAndDeletePostOwnership(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	alice := api.register(t, "alice")
	bob := api.register(t, "bob")

	w := api.do(t, http.MethodPost, "/posts", alice.AccessToken, map[string]string{"content": "original"})
	post := decodeBody[*domain.Post](t, w)

	w = api.do(t, http.MethodPut, "/posts/"+post.ID.String(), bob.AccessToken, map[string]string{"content": "hijacked"})
	req.Equal(http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPut, "/posts/"+post.ID.String(), alice.AccessToken, map[string]string{"content": "edited"})
	req.Equal(http.StatusOK, w.Code)
	edited := decodeBody[*domain.Post](t, w)
	req.Equal("edited", edited.Content)

	w = api.do(t, http.MethodDelete, "/posts/"+post.ID.String(), bob.AccessToken, nil)
	req.Equal(http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodDelete, "/posts/"+post.ID.String(), alice.AccessToken, nil)
	req.Equal(http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/posts/"+post.ID.String(), alice.AccessToken, nil)
	req.Equal(http.StatusNotFound, w.Code)
}

func TestAdminModeration(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	alice := api.register(t, "alice")
	_, adminToken := api.seedAdmin(t)

	w := api.do(t, http.MethodPost, "/posts", alice.AccessToken, map[string]string{"content": "soon gone"})
	post := decodeBody[*domain.Post](t, w)

	// Regular users cannot reach admin routes.
	w = api.do(t, http.MethodDelete, "/admin/posts/"+post.ID.String(), alice.AccessToken, nil)
	req.Equal(http.StatusForbidden, w.Code)

	// An admin can remove someone else's post.
	w = api.do(t, http.MethodDelete, "/admin/posts/"+post.ID.String(), adminToken, nil)
	req.Equal(http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/posts", "", nil)
	feed := decodeBody[[]domain.Post](t, w)
	req.Empty(feed)

	// Banning cuts off the account on the next request.
	w = api.do(t, http.MethodPut, "/admin/users/"+alice.User.ID.String()+"/ban", adminToken, nil)
	req.Equal(http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/me", alice.AccessToken, nil)
	req.Equal(http.StatusForbidden, w.Code)
	req.Contains(w.Body.String(), "banned")

	// Banning an unknown user is a 404.
	w = api.do(t, http.MethodPut, "/admin/users/"+uuid.NewString()+"/ban", adminToken, nil)
	req.Equal(http.StatusNotFound, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	alice := api.register(t, "alice")

	w := api.do(t, http.MethodPut, "/profile", alice.AccessToken, map[string]string{
		"display_name": "Alice K",
		"bio":          "gopher",
		"location":     "Zagreb",
	})
	req.Equal(http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/me", alice.AccessToken, nil)
	me := decodeBody[*service.MeResponse](t, w)
	req.Equal("Alice K", me.User.DisplayName)
	req.Equal("gopher", me.User.Bio)

	// Validation failures name the offending field.
	w = api.do(t, http.MethodPut, "/profile", alice.AccessToken, map[string]string{"display_name": ""})
	req.Equal(http.StatusBadRequest, w.Code)
	req.Contains(w.Body.String(), "display_name")
}

func TestAvatarUpload(t *testing.T) {
	req := require.New(t)
	api := newTestAPI()

	alice := api.register(t, "alice")

	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "avatar.png")
	req.NoError(err)
	_, err = part.Write(png)
	req.NoError(err)
	req.NoError(writer.Close())

	r := httptest.NewRequest(http.MethodPut, "/profile/avatar", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+alice.AccessToken)
	w := httptest.NewRecorder()
	api.mux.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code, w.Body.String())
	req.Contains(w.Body.String(), "https://i.example/hosted.png")

	me := decodeBody[*service.MeResponse](t, api.do(t, http.MethodGet, "/me", alice.AccessToken, nil))
	req.NotNil(me.User.AvatarURL)
	req.Equal("https://i.example/hosted.png", *me.User.AvatarURL)

	// A text payload is rejected before it ever reaches the host.
	var textBody bytes.Buffer
	writer = multipart.NewWriter(&textBody)
	part, err = writer.CreateFormFile("image", "notes.txt")
	req.NoError(err)
	_, err = part.Write([]byte("just some text"))
	req.NoError(err)
	req.NoError(writer.Close())

	r = httptest.NewRequest(http.MethodPut, "/profile/cover", &textBody)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	r.Header.Set("Authorization", "Bearer "+alice.AccessToken)
	w = httptest.NewRecorder()
	api.mux.ServeHTTP(w, r)

	req.Equal(http.StatusBadRequest, w.Code)
	req.Contains(w.Body.String(), "INVALID_IMAGE")
}
