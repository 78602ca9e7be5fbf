package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scribehq/scribe/internal/api"
	"github.com/scribehq/scribe/internal/auth"
	"github.com/scribehq/scribe/internal/store"
	"github.com/scribehq/scribe/internal/testutil"
)

// testPassword is the password every seeded test user logs in with.
const testPassword = "password-for-tests"

// captureMailer records the last magic link instead of sending mail.
type captureMailer struct {
	LastEmail string
	LastLink  string
}

func (m *captureMailer) SendMagicLink(_ context.Context, email, link string) error {
	m.LastEmail = email
	m.LastLink = link
	return nil
}

// memoryCache is an in-memory api.PostCache so tests can observe what the
// handlers cache and invalidate.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, slug string) ([]byte, bool) {
	payload, ok := c.entries[slug]
	return payload, ok
}

func (c *memoryCache) Set(_ context.Context, slug string, payload []byte) {
	c.entries[slug] = payload
}

func (c *memoryCache) Invalidate(_ context.Context, slugs ...string) {
	for _, s := range slugs {
		delete(c.entries, s)
	}
}

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router       http.Handler
	UserStore    *store.UserStore
	PostStore    *store.PostStore
	CommentStore *store.CommentStore
	MagicStore   *auth.MagicLinkStore
	Mailer       *captureMailer
	Cache        *memoryCache
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full router with real stores, session middleware, and an
// in-memory post cache.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	us := store.NewUserStore(db)
	ps := store.NewPostStore(db)
	cs := store.NewCommentStore(db)
	ms := auth.NewMagicLinkStore(db)

	sm := auth.NewSessionManager(db, "sqlite", time.Hour, false)
	mailer := &captureMailer{}
	handlers := auth.NewHandlers(sm, us, ms, mailer, "http://scribe.test", 15*time.Minute, "")
	mw := auth.NewMiddleware(sm, us)
	pc := newMemoryCache()

	router := api.NewRouter(api.Deps{
		SessionManager: sm,
		AuthHandlers:   handlers,
		AuthMiddleware: mw,
		PostStore:      ps,
		CommentStore:   cs,
		UserStore:      us,
		PostCache:      pc,
	})

	return &testEnv{
		Router:       router,
		UserStore:    us,
		PostStore:    ps,
		CommentStore: cs,
		MagicStore:   ms,
		Mailer:       mailer,
		Cache:        pc,
	}
}

// seedUser creates a user with testPassword and the given role.
func seedUser(t *testing.T, env *testEnv, email, role string) *store.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := env.UserStore.Create(context.Background(), email, "Test User", hash, role)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// login signs the user in through the real login endpoint and returns the
// session cookies to attach to subsequent requests.
func login(t *testing.T, env *testEnv, email string) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": testPassword})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d; body: %s", email, rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login %s: no session cookie set", email)
	}
	return cookies
}

// do runs a JSON request through the router with optional session cookies.
func do(env *testEnv, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}
