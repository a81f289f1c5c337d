package handlers

import (
	"net/http"

	"pitchinvest/services/billing"
	"pitchinvest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubscriptionHandler creates checkout sessions for the mandatory
// subscription.
type SubscriptionHandler struct {
	Billing billing.Service
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(b billing.Service) *SubscriptionHandler {
	return &SubscriptionHandler{Billing: b}
}

// CheckoutHandler creates a Stripe checkout session for the authenticated
// user and returns the hosted checkout URL.
func (sh *SubscriptionHandler) CheckoutHandler(c *gin.Context) {
	logger := getLogger(c)

	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	url, err := sh.Billing.CreateSubscriptionCheckout(c.Request.Context(), userID.(string))
	if err != nil {
		logger.Error("Failed to create checkout session", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create checkout session", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkoutUrl": url})
}
