package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mebegu/audiocorrect/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	audioHandler := handler.NewAudioHandler(deps)

	// Health check endpoint
	r.GET("/health", audioHandler.Health)

	// POST /upload - submit an audio clip for correction
	r.POST("/upload", audioHandler.Upload)

	// GET /status - list all jobs, newest first
	r.GET("/status", audioHandler.ListJobs)

	// GET /status/:id - poll one job
	r.GET("/status/:id", audioHandler.GetStatus)

	// GET /download/:id - fetch the corrected audio
	r.GET("/download/:id", audioHandler.Download)

	return r
}
