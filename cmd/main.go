package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"points-market/internal/auth"
	"points-market/internal/config"
	"points-market/internal/database"
	"points-market/internal/handlers"
	"points-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize session store and services
	sessions := auth.NewSessionStore(cfg.App.SessionTTL)
	authService := services.NewAuthService(db, sessions, cfg)
	marketService := services.NewMarketService(db)
	tradeService := services.NewTradeService(db)

	// Select admin authorization policy
	var adminPolicy auth.AdminPolicy
	switch cfg.Auth.AdminPolicy {
	case config.AdminPolicySecret:
		adminPolicy = auth.NewSharedKeyPolicy(cfg.Auth.AdminKey)
	default:
		adminPolicy = auth.NewFlagPolicy(db)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	marketHandler := handlers.NewMarketHandler(marketService)
	tradeHandler := handlers.NewTradeHandler(tradeService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Every route resolves the caller from the session token; anonymous
	// requests pass through and are rejected per-route where needed.
	router.Use(auth.ResolveCaller(sessions))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	// Public market routes
	router.GET("/api/markets", marketHandler.GetMarkets)
	router.GET("/api/markets/:id", marketHandler.GetMarketByID)

	// Session-gated routes
	router.GET("/api/me", auth.RequireAuth(), authHandler.GetMe)
	router.POST("/buy", tradeHandler.Buy)

	// Admin market routes
	admin := router.Group("/", auth.RequireAdmin(adminPolicy))
	{
		admin.POST("/api/markets", marketHandler.CreateMarket)
		admin.PUT("/api/markets/:id", marketHandler.UpdateMarket)
		admin.DELETE("/api/markets/:id", marketHandler.DeleteMarket)

		// Form-style admin routes
		admin.POST("/create_market", marketHandler.CreateMarketForm)
		admin.POST("/add", marketHandler.CreateMarketForm)
		admin.GET("/delete/:id", marketHandler.DeleteMarketForm)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
