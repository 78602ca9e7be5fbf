package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribehq/scribe/internal/api"
	"github.com/scribehq/scribe/internal/auth"
	"github.com/scribehq/scribe/internal/cache"
	"github.com/scribehq/scribe/internal/config"
	"github.com/scribehq/scribe/internal/db"
	"github.com/scribehq/scribe/internal/metrics"
	"github.com/scribehq/scribe/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)

			userStore := store.NewUserStore(database)
			postStore := store.NewPostStore(database)
			commentStore := store.NewCommentStore(database)
			magicStore := auth.NewMagicLinkStore(database)

			authHandlers := auth.NewHandlers(sessionManager, userStore, magicStore, auth.LogMailer{},
				cfg.HTTP.BaseURL, cfg.MagicLinkTTL, cfg.AdminEmail)
			authMiddleware := auth.NewMiddleware(sessionManager, userStore)

			ctx := context.Background()
			go runGaugeUpdater(ctx, postStore, userStore)
			go runTokenSweeper(ctx, magicStore)

			deps := api.Deps{
				SessionManager: sessionManager,
				AuthHandlers:   authHandlers,
				AuthMiddleware: authMiddleware,
				PostStore:      postStore,
				CommentStore:   commentStore,
				UserStore:      userStore,
			}
			if cfg.Redis.Addr != "" {
				deps.PostCache = cache.New(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.TTL)
				log.Printf("post cache enabled via redis at %s", cfg.Redis.Addr)
			}
			router := api.NewRouter(deps)

			log.Printf("listening on %s", cfg.HTTP.Addr)
			return http.ListenAndServe(cfg.HTTP.Addr, router)
		},
	}
}

// runGaugeUpdater refreshes the posts/users totals once a minute.
func runGaugeUpdater(ctx context.Context, ps *store.PostStore, us *store.UserStore) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		if n, err := ps.CountPosts(ctx); err == nil {
			metrics.PostsTotal.Set(float64(n))
		}
		if n, err := us.CountUsers(ctx); err == nil {
			metrics.UsersTotal.Set(float64(n))
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// runTokenSweeper clears expired magic-link tokens hourly.
func runTokenSweeper(ctx context.Context, ms *auth.MagicLinkStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := ms.PurgeExpired(ctx); err != nil {
				log.Printf("token sweep: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
