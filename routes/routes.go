package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/geo-reconciler/app/controllers"
)

// SetupAllRoutes wires every route group onto the router.
func SetupAllRoutes(router *gin.Engine, cityController *controllers.CityController, adminController *controllers.AdminController) {
	SetupWebRoutes(router)
	SetupHealthRoutes(router, cityController)
	SetupAPIRoutes(router, cityController, adminController)
}
