package routes

import (
	"net/http"
	"time"

	"pitchinvest/handlers"
	"pitchinvest/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates every handler the router needs.
type HandlerBundle struct {
	Registration *handlers.RegistrationHandler
	Admin        *handlers.AdminHandler
	Subscription *handlers.SubscriptionHandler
}

// RegisterRegistrationRoutes registers the wizard endpoints.
func RegisterRegistrationRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/register")
	{
		api.POST("", hb.Registration.StepHandler)
		api.POST("/submit", hb.Registration.SubmitHandler)
		api.GET("/geo", middleware.GeolocationMiddleware(), hb.Registration.GeoPrefillHandler)
	}
}

// RegisterSubscriptionRoutes registers the billing entry point.
func RegisterSubscriptionRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/subscription")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/checkout", hb.Subscription.CheckoutHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for the approval workflow.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminAuthMiddleware())
		adminGroup.GET("/registrations/pending", hb.Admin.ListPendingHandler)
		adminGroup.PUT("/registrations/:id/approve", hb.Admin.ApproveHandler)
		adminGroup.PUT("/registrations/:id/reject", hb.Admin.RejectHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Pitch Invest"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterRegistrationRoutes(r, hb)
	RegisterSubscriptionRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
