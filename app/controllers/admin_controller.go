package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/geo-reconciler/app/responses"
	"github.com/geo-reconciler/app/services"
)

// AdminController handles directory and cache administration.
type AdminController struct {
	resolveService *services.ResolveService
	cacheService   services.ICacheService
	logger         *zap.Logger
}

// NewAdminController creates an AdminController.
func NewAdminController(resolveService *services.ResolveService, cacheService services.ICacheService, logger *zap.Logger) *AdminController {
	return &AdminController{
		resolveService: resolveService,
		cacheService:   cacheService,
		logger:         logger,
	}
}

// ReloadDirectory fetches a fresh directory snapshot and swaps it in.
func (ac *AdminController) ReloadDirectory(c *gin.Context) {
	if err := ac.resolveService.ReloadDirectory(c.Request.Context()); err != nil {
		ac.logger.Error("directory reload failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, responses.ErrorResponse{
			Error:   "DIRECTORY_RELOAD_FAILED",
			Message: err.Error(),
		})
		return
	}
	ac.DirectoryStatus(c)
}

// DirectoryStatus reports on the active directory snapshot.
func (ac *AdminController) DirectoryStatus(c *gin.Context) {
	status, err := ac.resolveService.DirectoryStatus()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   "DIRECTORY_NOT_LOADED",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, responses.DirectoryStatusResponse{
		Version:         status.Version,
		TotalEntries:    status.TotalEntries,
		DomesticEntries: status.DomesticEntries,
		LoadedAt:        status.LoadedAt,
	})
}

// InvalidateCache drops every cached resolution.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	if err := ac.cacheService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CACHE_CLEAR_FAILED",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cache cleared"})
}

// CacheStats returns resolution cache statistics.
func (ac *AdminController) CacheStats(c *gin.Context) {
	stats, err := ac.cacheService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CACHE_STATS_FAILED",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}
