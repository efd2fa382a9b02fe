package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/codyseavey/pokecard-lookup/internal/api/handlers"
	"github.com/codyseavey/pokecard-lookup/internal/config"
	"github.com/codyseavey/pokecard-lookup/internal/logging"
	"github.com/codyseavey/pokecard-lookup/internal/session"
)

func SetupRouter(cfg *config.Config, searcher handlers.Searcher, sessions *session.Store, logger *zap.Logger) *gin.Engine {
	logger = logging.OrNop(logger)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	frontendPath := cfg.FrontendDistPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(searcher, logger)
	collectionHandler := handlers.NewCollectionHandler(sessions, cfg.GetSessionTTL(), logger)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/pokemon", cardHandler.SearchCards)

		// Collection routes
		collection := api.Group("/collection")
		{
			collection.GET("", collectionHandler.GetCollection)
			collection.POST("", collectionHandler.AddToCollection)
			collection.GET("/export", collectionHandler.ExportCollection)
			collection.PUT("/:id", collectionHandler.UpdateCollectionItem)
			collection.DELETE("/:id", collectionHandler.DeleteCollectionItem)
			collection.POST("/:id/increment", collectionHandler.IncrementItem)
			collection.POST("/:id/decrement", collectionHandler.DecrementItem)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serve frontend static files
	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.StaticFile("/favicon.ico", filepath.Join(frontendPath, "favicon.ico"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	} else {
		router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})
	}

	return router
}

// corsConfig allows the configured origins, falling back to the local dev
// servers when none are set. Cross-origin clients carry their session in
// the X-Collection-Session header, so credentials stay disabled.
func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) > 0 {
		config.AllowOrigins = origins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", handlers.SessionHeader}
	config.ExposeHeaders = []string{handlers.SessionHeader, "Content-Disposition"}
	config.AllowCredentials = false
	return config
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
