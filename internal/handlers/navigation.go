package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spotdesk/internal/app"
)

// NavigationSource provides the application navigation state
type NavigationSource interface {
	State() app.NavigationState
}

// NavigationHandler exposes the navigator
type NavigationHandler struct {
	navigator NavigationSource
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(navigator NavigationSource) *NavigationHandler {
	return &NavigationHandler{navigator: navigator}
}

// Get handles GET /api/v1/navigation
func (h *NavigationHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.navigator.State())
}
