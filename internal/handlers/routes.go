package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the control API handlers
type Handlers struct {
	Search     *SearchHandler
	Navigation *NavigationHandler
	Crashes    *CrashHandler
	Admin      *AdminHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts the control API under /api/v1. A non-empty secret
// puts every route behind JWTAuth.
func RegisterRoutes(router *gin.Engine, h Handlers, secret string) {
	api := router.Group("/api/v1")
	api.Use(JWTAuth(secret))

	if h.Search != nil {
		api.POST("/search", h.Search.Submit)
		api.GET("/search", h.Search.Get)
		api.PUT("/search/category", h.Search.SetCategory)
		api.POST("/search/select", h.Search.Select)
		api.POST("/search/open", h.Search.Open)
	}
	if h.Navigation != nil {
		api.GET("/navigation", h.Navigation.Get)
	}
	if h.Crashes != nil {
		api.GET("/crashes", h.Crashes.List)
		api.GET("/crashes/:id", h.Crashes.Get)
		api.DELETE("/crashes", h.Crashes.Prune)
	}
	if h.Admin != nil {
		api.GET("/admin/db-stats", h.Admin.GetDatabaseStats)
	}
	if h.Health != nil {
		api.GET("/health", h.Health.Health)
	}
}
