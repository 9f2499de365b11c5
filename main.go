package main

import (
	"log"
	"os"

	"surveillance-center/backend/config"
	"surveillance-center/backend/database"
	"surveillance-center/backend/handlers"
	"surveillance-center/backend/middleware"
	"surveillance-center/backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize services
	configService := services.NewConfigService(db)
	resolver := services.NewResolver(db)
	alertStream := services.NewAlertStreamService()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg.JWT)
	cameraHandler := handlers.NewCameraHandler(db)
	configHandler := handlers.NewConfigHandler(db, configService, resolver)
	alertHandler := handlers.NewAlertHandler(db, alertStream, cfg.Media)
	videoHandler := handlers.NewVideoHandler(db)
	pipelineHandler := handlers.NewPipelineHandler(db, resolver)
	dashboardHandler := handlers.NewDashboardHandler(db)

	// Setup router
	router := setupRouter(authHandler, cameraHandler, configHandler, alertHandler, videoHandler, pipelineHandler, dashboardHandler, cfg)

	// Start server
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRouter(
	authHandler *handlers.AuthHandler,
	cameraHandler *handlers.CameraHandler,
	configHandler *handlers.ConfigHandler,
	alertHandler *handlers.AlertHandler,
	videoHandler *handlers.VideoHandler,
	pipelineHandler *handlers.PipelineHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS configuration
	// Allow all localhost origins for development
	router.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			// Allow requests with no origin (like mobile apps or curl requests)
			if origin == "" {
				return true
			}
			// Allow all localhost and 127.0.0.1 origins
			return origin == "http://localhost:8080" ||
				origin == "http://localhost:5173" ||
				origin == "http://localhost:3000" ||
				origin == "http://127.0.0.1:8080" ||
				origin == "http://127.0.0.1:5173" ||
				origin == "http://127.0.0.1:3000"
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * 3600, // 12 hours
	}))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Serve stored alert frames and video files
	router.Static("/media", cfg.Media.Root)

	// Public routes
	api := router.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	{
		// Auth routes
		protected.GET("/auth/me", authHandler.GetMe)
		protected.POST("/auth/logout", authHandler.Logout)

		// Dashboard summary
		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		// Camera routes
		cameras := protected.Group("/cameras")
		{
			cameras.GET("", cameraHandler.GetCameras)
			cameras.GET("/:id", cameraHandler.GetCamera)
			cameras.POST("", cameraHandler.CreateCamera)
			cameras.PUT("/:id", cameraHandler.UpdateCamera)
			cameras.DELETE("/:id", cameraHandler.DeleteCamera)
			cameras.POST("/:id/activate", cameraHandler.ActivateCamera)
			cameras.POST("/:id/deactivate", cameraHandler.DeactivateCamera)
			cameras.GET("/:id/config", configHandler.GetCameraConfig)
			cameras.PUT("/:id/config", configHandler.UpdateCameraConfig)
			cameras.DELETE("/:id/config", configHandler.DeleteCameraConfig)
		}

		// Per-user default detection config
		protected.GET("/users/me/default-config", configHandler.GetUserDefaultConfig)
		protected.PUT("/users/me/default-config", configHandler.UpdateUserDefaultConfig)
		protected.DELETE("/users/me/default-config", configHandler.DeleteUserDefaultConfig)

		// Alert routes
		alerts := protected.Group("/alerts")
		{
			alerts.GET("", alertHandler.GetAlerts)
			alerts.GET("/unacknowledged", alertHandler.GetUnacknowledgedAlerts)
			alerts.GET("/stream", alertHandler.StreamAlerts)
			alerts.GET("/:id", alertHandler.GetAlert)
			alerts.POST("/:id/acknowledge", alertHandler.AcknowledgeAlert)
		}

		// Video routes
		videos := protected.Group("/videos")
		{
			videos.GET("", videoHandler.GetVideos)
			videos.GET("/:id", videoHandler.GetVideo)
			videos.POST("", videoHandler.CreateVideo)
			videos.PUT("/:id", videoHandler.UpdateVideo)
			videos.DELETE("/:id", videoHandler.DeleteVideo)
			videos.POST("/:id/process", videoHandler.ProcessVideo)
		}

		// Pipeline-facing routes
		pipeline := protected.Group("/pipeline")
		{
			pipeline.GET("/cameras", pipelineHandler.GetActiveCameras)
			pipeline.POST("/alerts", alertHandler.CreateAlert)
		}
	}

	return router
}
