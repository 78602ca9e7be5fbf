// Package metrics exposes the application's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_posts_created_total",
		Help: "Posts successfully created.",
	})

	SlugCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_slug_collisions_total",
		Help: "Slug generations that needed a numeric suffix.",
	})

	SlugConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_slug_conflicts_total",
		Help: "Inserts or updates rejected by the slug unique index.",
	})

	CommentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_comments_created_total",
		Help: "Comments successfully created.",
	})

	MagicLinksIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_magic_links_issued_total",
		Help: "Magic-link login tokens issued.",
	})

	MagicLinksRedeemedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scribe_magic_links_redeemed_total",
		Help: "Magic-link login tokens successfully redeemed.",
	})

	PostCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scribe_post_cache_requests_total",
		Help: "Post-by-slug cache lookups.",
	}, []string{"result"})

	PostsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scribe_posts_total",
		Help: "Total number of posts in the database.",
	})

	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scribe_users_total",
		Help: "Total number of registered users in the database.",
	})
)
