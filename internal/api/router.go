package api

import (
	"context"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"mediremind-backend/config"
	"mediremind-backend/internal/auth"
	"mediremind-backend/internal/mw"
	"mediremind-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(ctx context.Context, s store.Store, webpushOptions *webpush.Options, tokens *auth.Manager, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(ctx, s, webpushOptions, tokens, cfg.Stream.Interval)

	rps := cfg.Server.RateLimitPerSec
	if rps <= 0 {
		rps = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rps), 5, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)

		// Stream auth is a one-time token check at connection open; SSE
		// clients cannot set an Authorization header.
		api.GET("/notifications/stream", handler.StreamNotifications)

		authed := api.Group("", AuthRequired(tokens))
		{
			authed.GET("/subscriptions", handler.GetSubscriptions)
			authed.PUT("/subscriptions", handler.PutSubscription)
			authed.DELETE("/subscriptions", handler.DeleteSubscription)

			authed.GET("/reminders/history", handler.GetReminderHistory)
			authed.POST("/reminders/:id/ack", handler.AckReminder)
		}
	}

	return r
}
