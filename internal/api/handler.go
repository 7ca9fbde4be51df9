package api

import (
	"context"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"mediremind-backend/internal/auth"
	"mediremind-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store          store.Store
	webpush        *webpush.Options
	tokens         *auth.Manager
	streamInterval time.Duration
	rootCtx        context.Context
}

// NewHandler creates a new API handler. rootCtx bounds the lifetime of
// every open notification stream; cancelling it on shutdown lets active
// SSE connections drain instead of pinning the server.
func NewHandler(rootCtx context.Context, s store.Store, webpushOptions *webpush.Options, tokens *auth.Manager, streamInterval time.Duration) *Handler {
	if rootCtx == nil {
		rootCtx = context.Background()
	}
	return &Handler{
		store:          s,
		webpush:        webpushOptions,
		tokens:         tokens,
		streamInterval: streamInterval,
		rootCtx:        rootCtx,
	}
}
