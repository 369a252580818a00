package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/geo-reconciler/app/controllers"
)

// SetupAPIRoutes wires the versioned API surface.
func SetupAPIRoutes(router *gin.Engine, cityController *controllers.CityController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		cities := v1.Group("/cities")
		{
			cities.POST("/resolve", cityController.ResolveCity)
			cities.POST("/reconcile", cityController.Reconcile)
			cities.POST("/merge", cityController.Merge)
			cities.GET("/jobs/:jobID", cityController.GetJobStatus)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.GET("/:sessionID", cityController.GetSession)
			sessions.POST("/:sessionID/override", cityController.ApplyOverride)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/directory/reload", adminController.ReloadDirectory)
			admin.GET("/directory/status", adminController.DirectoryStatus)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.GET("/cache/stats", adminController.CacheStats)
		}

		v1.GET("/health", cityController.HealthCheck)
	}
}

// SetupHealthRoutes wires the unversioned probe endpoints.
func SetupHealthRoutes(router *gin.Engine, cityController *controllers.CityController) {
	router.GET("/health", cityController.HealthCheck)
	router.GET("/ready", cityController.HealthCheck)
	router.GET("/live", cityController.HealthCheck)
}
