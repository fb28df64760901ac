package render

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx control API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Error writes an error body and aborts the handler chain
func Error(c *gin.Context, status int, message string, err error) {
	body := ErrorResponse{Error: message}
	if err != nil {
		body.Details = err.Error()
		if status >= http.StatusInternalServerError {
			slog.Error(message, "path", c.FullPath(), "error", err)
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest reports a malformed request body or parameter
func BadRequest(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// NotFound reports a missing resource
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// List wraps a collection with its size
func List[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
