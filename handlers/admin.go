package handlers

import (
	"net/http"

	"pitchinvest/services/admin"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates the profile approval workflow.
type AdminHandler struct {
	Service admin.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc admin.Service) *AdminHandler {
	return &AdminHandler{Service: svc}
}

// ListPendingHandler returns every registration awaiting review.
func (ah *AdminHandler) ListPendingHandler(c *gin.Context) {
	users, err := ah.Service.ListPending(c.Request.Context())
	if err != nil {
		zap.L().Error("Failed to list pending registrations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending registrations"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// ApproveHandler approves a pending registration.
func (ah *AdminHandler) ApproveHandler(c *gin.Context) {
	userID := c.Param("id")
	if err := ah.Service.Approve(c.Request.Context(), userID); err != nil {
		zap.L().Error("Failed to approve registration", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration approved"})
}

// RejectHandler rejects a pending registration.
func (ah *AdminHandler) RejectHandler(c *gin.Context) {
	userID := c.Param("id")
	if err := ah.Service.Reject(c.Request.Context(), userID); err != nil {
		zap.L().Error("Failed to reject registration", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration rejected"})
}
