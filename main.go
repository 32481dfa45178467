package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/himique/Industial-Automation/config"
	"github.com/himique/Industial-Automation/controllers"
	"github.com/himique/Industial-Automation/middlewares"
)

func main() {
	// Load environment variables; missing required config is fatal.
	if err := config.Load(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Connect to PostgreSQL database
	db, err := config.Connect(config.C.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := controllers.MigrateModels(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Set up Gin router with CORS configuration
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.C.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	RegisterRoutes(r)

	addr := ":" + config.C.Port
	log.WithField("addr", addr).Info("API is running")
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine) {
	// Public routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is running. POST to /graphql to query the catalog."})
	})
	r.POST("/auth/token", controllers.Login)
	r.POST("/graphql", controllers.GraphQL)
	r.GET("/ws/catalog", controllers.HandleCatalogFeed)
	r.Static("/static/models", config.C.ModelsDir)

	// Protected routes
	authed := r.Group("/")
	authed.Use(middlewares.RequireAuthenticated())
	authed.GET("/auth/token/me", controllers.Me)

	admin := r.Group("/")
	admin.Use(middlewares.RequireAdmin())
	admin.POST("/upload-model/:productId", controllers.UploadModel)
}
