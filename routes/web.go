package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupWebRoutes wires the informational root endpoints.
func SetupWebRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Geo Reconciler",
			"version": "1.0.0",
			"docs":    "/docs",
		})
	})

	router.GET("/docs", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"api": "Geo Reconciler API v1",
			"endpoints": map[string]string{
				"resolve":    "POST /v1/cities/resolve",
				"reconcile":  "POST /v1/cities/reconcile",
				"merge":      "POST /v1/cities/merge",
				"job_status": "GET /v1/cities/jobs/:jobID",
				"session":    "GET /v1/sessions/:sessionID",
				"override":   "POST /v1/sessions/:sessionID/override",
				"health":     "GET /v1/health",
			},
		})
	})
}
