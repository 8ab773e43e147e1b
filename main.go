package main

import (
	"log"

	"hangout-backend/config"
	"hangout-backend/database"
	"hangout-backend/handlers"
	"hangout-backend/middleware"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.Load()

	// Connect to database
	database.Connect()

	// Connect to Redis (optional, won't crash if unavailable)
	database.ConnectRedis()

	// Setup router
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": config.AppConfig.AppName,
		})
	})

	// ==========================================
	// AUTH ROUTES (public)
	// ==========================================
	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	// ==========================================
	// API ROUTES (authenticated)
	// ==========================================
	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		// User
		api.GET("/users/me", handlers.GetProfile)
		api.PUT("/users/me", handlers.UpdateProfile)
		api.PUT("/users/me/fcm-token", handlers.UpdateFCMToken)
		api.POST("/users/search", handlers.SearchUsers)

		// Invites
		api.POST("/invites", handlers.ComposeInvite)
		api.GET("/invites", handlers.GetInvites)
		api.GET("/invites/badge", handlers.GetBadgeCount)
		api.POST("/invites/:id/accept", handlers.AcceptInvite)
		api.POST("/invites/:id/decline", handlers.DeclineInvite)
		api.POST("/invites/:id/undo", handlers.UndoConfirmation)
		api.PUT("/invites/:id", handlers.EditInvite)
		api.GET("/invites/:id/review", handlers.OpenReviewRequest)

		// Meetups & reviews
		api.POST("/meetups", handlers.RecordMeetup)
		api.GET("/meetups/:id", handlers.GetMeetup)
		api.POST("/meetups/:id/review", handlers.SubmitReview)

		// Upcoming events
		api.GET("/events", handlers.GetUpcomingEvents)

		// Activity
		api.GET("/activity", handlers.GetActivity)

		// Session teardown
		api.DELETE("/session", handlers.DropSession)
	}

	// Start server
	port := config.AppConfig.Port
	log.Printf("🚀 %s server starting on port %s", config.AppConfig.AppName, port)

	addr := "0.0.0.0:" + port
	log.Printf("🚀 Listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
