package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/admatch-backend/internal/http/handlers"
)

type RouterConfig struct {
	AllowedOrigins []string

	HealthHandler        *handlers.HealthHandler
	AdvertisementHandler *handlers.AdvertisementHandler
	ItemHandler          *handlers.ItemHandler
	JobHandler           *handlers.JobHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/retailers", cfg.AdvertisementHandler.CreateRetailer)

		api.POST("/advertisements", cfg.AdvertisementHandler.CreateAdvertisement)
		api.POST("/advertisements/:id/files", cfg.AdvertisementHandler.UploadFiles)
		api.GET("/advertisements/:id", cfg.AdvertisementHandler.GetAdvertisement)
		api.GET("/advertisements/:id/items", cfg.AdvertisementHandler.ListItems)
		api.POST("/advertisements/:id/finish-later", cfg.AdvertisementHandler.FinishLater)
		api.POST("/advertisements/:id/complete", cfg.AdvertisementHandler.MarkComplete)
		api.DELETE("/advertisements/:id", cfg.AdvertisementHandler.DeleteAdvertisement)

		api.POST("/items/:id/match", cfg.ItemHandler.ConfirmMatch)
		api.POST("/items/:id/unmatch", cfg.ItemHandler.Unmatch)

		api.GET("/jobs/:id", cfg.JobHandler.GetJob)
	}

	return router
}
