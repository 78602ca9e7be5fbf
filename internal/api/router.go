package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scribehq/scribe/internal/auth"
	"github.com/scribehq/scribe/internal/store"
)

// PostCache is the cache surface the handlers use. *cache.PostCache
// implements it. Leave the field nil to disable caching.
type PostCache interface {
	Get(ctx context.Context, slug string) ([]byte, bool)
	Set(ctx context.Context, slug string, payload []byte)
	Invalidate(ctx context.Context, slugs ...string)
}

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthHandlers   *auth.Handlers
	AuthMiddleware *auth.Middleware
	PostStore      *store.PostStore
	CommentStore   *store.CommentStore
	UserStore      *store.UserStore
	PostCache      PostCache // nil disables caching
}

// NewRouter assembles the full chi router. Named routes are registered before
// the catch-all slug resolver at /{slug}; the reserved-slug set keeps post
// slugs from shadowing them.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(deps.SessionManager.LoadAndSave)

	r.Handle("/metrics", promhttp.Handler())

	ph := newPostsHandler(deps.PostStore, deps.CommentStore, deps.PostCache)
	ch := newCommentsHandler(deps.PostStore, deps.CommentStore, deps.PostCache)
	ah := newAdminHandler(deps.UserStore)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Post("/auth/register", deps.AuthHandlers.Register)
		r.Post("/auth/login", deps.AuthHandlers.Login)
		r.Post("/auth/logout", deps.AuthHandlers.Logout)
		r.Post("/auth/magic-link", deps.AuthHandlers.RequestMagicLink)
		r.Get("/auth/magic-link/{token}", deps.AuthHandlers.RedeemMagicLink)

		// Public reads
		r.Get("/posts", ph.List)

		// Authenticated mutations
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.Post("/posts", ph.Create)
			r.Put("/posts/{id}", ph.Update)
			r.Delete("/posts/{id}", ph.Delete)

			r.Post("/posts/{id}/comments", ch.Create)
			r.Delete("/comments/{id}", ch.Delete)
		})

		// Admin
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireRole("admin"))

			r.Get("/users", ah.ListUsers)
			r.Put("/users/{id}/role", ah.UpdateRole)
		})
	})

	// Catch-all: public post detail by slug.
	r.Get("/{slug}", ph.GetBySlug)

	return r
}
