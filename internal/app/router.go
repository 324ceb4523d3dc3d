// internal/app/router.go
package app

import (
	aiHandler "lumen-service/internal/handlers/ai"
	authHandler "lumen-service/internal/handlers/auth"
	notifyHandler "lumen-service/internal/handlers/notification"
	offerHandler "lumen-service/internal/handlers/offer"
	paymentHandler "lumen-service/internal/handlers/payment"
	planHandler "lumen-service/internal/handlers/plan"
	subscriptionHandler "lumen-service/internal/handlers/subscription"
	usageHandler "lumen-service/internal/handlers/usage"
	wsHandler "lumen-service/internal/handlers/websocket"
	"lumen-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	PlanHandler         *planHandler.PlanHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	PaymentHandler      *paymentHandler.PaymentHandler
	UsageHandler        *usageHandler.UsageHandler
	OfferHandler        *offerHandler.OfferHandler
	AIHandler           *aiHandler.AIHandler
	NotifHandler        *notifyHandler.NotificationHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Auth ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Plans (public) ====================
	plans := api.Group("/plans")
	{
		plans.GET("", h.PlanHandler.List)
		plans.GET("/:id", h.PlanHandler.Get)
	}

	// ==================== Subscriptions ====================
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(h.AuthMiddleware.Auth())
	{
		subscriptions.GET("/current", h.SubscriptionHandler.Current)
		subscriptions.GET("/history", h.SubscriptionHandler.History)
		subscriptions.POST("/subscribe", h.SubscriptionHandler.Subscribe)
		subscriptions.POST("/upgrade", h.SubscriptionHandler.Upgrade)
		subscriptions.POST("/downgrade", h.SubscriptionHandler.Downgrade)
		subscriptions.POST("/cancel", h.SubscriptionHandler.Cancel)
	}

	// ==================== Payments ====================
	payments := api.Group("/payments")
	payments.Use(h.AuthMiddleware.Auth())
	{
		payments.GET("", h.PaymentHandler.List)
		payments.GET("/:id", h.PaymentHandler.Get)
	}

	// ==================== Usage ====================
	usage := api.Group("/usage")
	usage.Use(h.AuthMiddleware.Auth())
	{
		usage.GET("", h.UsageHandler.List)
		usage.POST("", h.UsageHandler.Report)
		usage.GET("/summary", h.UsageHandler.Summary)
	}

	// ==================== Offers ====================
	offers := api.Group("/offers")
	{
		offers.GET("", h.OfferHandler.ListActive)
		offers.GET("/:id", h.OfferHandler.Get)
		offers.POST("/:id/apply", h.AuthMiddleware.Auth(), h.OfferHandler.Apply)
	}

	// ==================== AI ====================
	ai := api.Group("/ai")
	ai.Use(h.AuthMiddleware.Auth())
	{
		ai.POST("/recommendations", h.AIHandler.Recommendations)
		ai.POST("/churn-prediction", h.AIHandler.ChurnPrediction)
		ai.POST("/notifications", h.AIHandler.Notifications)
		ai.POST("/batch", h.AuthMiddleware.RequireRole("admin"), h.AIHandler.Batch)
	}

	// ==================== Notifications ====================
	notifications := api.Group("/notifications")
	notifications.Use(h.AuthMiddleware.Auth())
	{
		notifications.GET("", h.NotifHandler.List)
		notifications.GET("/count/unread", h.NotifHandler.UnreadCount)
		notifications.PUT("/:id/read", h.NotifHandler.MarkRead)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("admin"))
	{
		admin.GET("/subscriptions", h.SubscriptionHandler.AdminList)
		admin.POST("/subscriptions/update", h.SubscriptionHandler.AdminUpdate)
		admin.POST("/subscriptions/cancel", h.SubscriptionHandler.AdminCancel)
		admin.GET("/payments/summary", h.PaymentHandler.RevenueSummary)
		admin.POST("/offers", h.OfferHandler.Create)
		admin.GET("/offers", h.OfferHandler.ListAll)
		admin.PUT("/offers/:id", h.OfferHandler.Update)
		admin.DELETE("/offers/:id", h.OfferHandler.Delete)
	}
}
