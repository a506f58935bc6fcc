package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-upscaler/internal/http/handlers"
	"github.com/phambaophuc/image-upscaler/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	logger       *zap.Logger
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		logger:       logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)

		images := v1.Group("/images")
		{
			images.POST("/upscale", middleware.ValidateContentType(), r.imageHandler.UpscaleImage)
			images.POST("/upscale/batch", middleware.ValidateContentType(), r.imageHandler.BatchUpscale)
			images.DELETE("/files/*path", r.imageHandler.DeleteImage)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", r.imageHandler.CreateJob)
			jobs.GET("/:id", r.imageHandler.GetJob)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image upscaler is running",
		})
	})

	return router
}
