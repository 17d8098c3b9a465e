package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hireside/proctor-gateway/internal/config"
	"github.com/hireside/proctor-gateway/internal/handler"
	"github.com/hireside/proctor-gateway/internal/middleware"
	"github.com/hireside/proctor-gateway/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Assessment *handler.AssessmentHandler
	Interview  *handler.InterviewHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.HeaderGatewayToken, "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── Assessment (proctored flows) ──────────────────────────────────
	assessment := router.Group("/api/v1/assessment")
	assessment.Use(middleware.RequireGatewayToken(cfg.GatewayToken))
	{
		assessment.POST("/:job_id/open", handlers.Assessment.Open)
		assessment.GET("/:job_id/remote", handlers.Assessment.GetRemoteSession)
		assessment.GET("/state", handlers.Assessment.GetState)
		assessment.PUT("/items/:item_id/draft", handlers.Assessment.SaveDraft)
		assessment.POST("/items/:item_id/submit", handlers.Assessment.SubmitItem)
		assessment.POST("/submit", handlers.Assessment.SubmitFinal)
		assessment.POST("/close", handlers.Assessment.Close)
	}

	// ─── Interview (conversational flow) ───────────────────────────────
	interview := router.Group("/api/v1/interview")
	interview.Use(middleware.RequireGatewayToken(cfg.GatewayToken))
	{
		interview.POST("/:job_id/open", handlers.Interview.Open)
		interview.GET("/:job_id", handlers.Interview.GetState)
		interview.POST("/:job_id/answers", handlers.Interview.SubmitAnswer)
		interview.POST("/:job_id/close", handlers.Interview.Close)
	}

	// ─── Proctoring signal stream ──────────────────────────────────────
	ws := router.Group("/ws/v1/assessment")
	ws.Use(middleware.RequireGatewayToken(cfg.GatewayToken))
	{
		ws.GET("/signals", handlers.WS.SignalStream)
	}

	return router
}
