package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.POST("/reports", handler.submitReport)
		protected.GET("/reports", handler.listReports)
		protected.GET("/reports/stream", handler.streamReports)
		protected.GET("/reports/worklist", handler.driverWorklist)
		protected.GET("/reports/:id", handler.getReport)
		protected.POST("/reports/:id/complete", handler.completeReport)
		protected.POST("/reports/:id/escalate", handler.escalateReport)

		protected.GET("/analytics", handler.analytics)
		protected.GET("/analytics/sla", handler.slaDashboard)
		protected.GET("/analytics/escalations", handler.escalationStats)
	}

	return router
}
