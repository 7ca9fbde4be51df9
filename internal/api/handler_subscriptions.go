package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type subscriptionKeys struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

type putSubscriptionRequest struct {
	Endpoint string           `json:"endpoint" binding:"required"`
	Keys     subscriptionKeys `json:"keys" binding:"required"`
}

// PutSubscription registers or replaces a push subscription for the
// authenticated user. Re-registering an existing endpoint updates keys
// and owner in place.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := currentUserID(c)
	if err := h.store.UpsertSubscription(c.Request.Context(), userID, req.Endpoint, req.Keys.P256DH, req.Keys.Auth); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes a push subscription owned by the
// authenticated user.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	userID := currentUserID(c)
	if err := h.store.RemoveSubscription(c.Request.Context(), userID, req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

type subscriptionResponse struct {
	Endpoint  string `json:"endpoint"`
	P256DH    string `json:"p256dh"`
	Auth      string `json:"auth"`
	CreatedAt string `json:"createdAt"`
}

// GetSubscriptions lists the authenticated user's push subscriptions.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	userID := currentUserID(c)
	subs, err := h.store.GetSubscriptions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		resp[i] = subscriptionResponse{
			Endpoint:  sub.Endpoint,
			P256DH:    sub.P256DH,
			Auth:      sub.Auth,
			CreatedAt: sub.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": resp})
}
