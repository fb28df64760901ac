package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spotdesk/internal/handlers/render"
	"spotdesk/internal/search"
)

// SearchSession is the part of the search session the control API drives
type SearchSession interface {
	Submit(ctx context.Context, raw string) error
	Select(ctx context.Context, category search.Category, id string) error
	SetCategory(ctx context.Context, category search.Category) error
	Open(ctx context.Context) error
	Snapshot() search.Snapshot
}

// SubmitQueryRequest is the body of POST /api/v1/search
type SubmitQueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// SetCategoryRequest is the body of PUT /api/v1/search/category
type SetCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// SelectItemRequest is the body of POST /api/v1/search/select
type SelectItemRequest struct {
	Category string `json:"category" binding:"required"`
	ID       string `json:"id" binding:"required"`
}

// SearchHandler exposes the search session over HTTP
type SearchHandler struct {
	session SearchSession
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(session SearchSession) *SearchHandler {
	return &SearchHandler{session: session}
}

// Submit handles POST /api/v1/search. The response reflects the state after
// the synchronous phase; artist results and covers show up on later GETs.
func (h *SearchHandler) Submit(c *gin.Context) {
	var req SubmitQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render.BadRequest(c, "Invalid request body", err)
		return
	}

	if err := h.session.Submit(c.Request.Context(), req.Query); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Get handles GET /api/v1/search
func (h *SearchHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// SetCategory handles PUT /api/v1/search/category
func (h *SearchHandler) SetCategory(c *gin.Context) {
	var req SetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render.BadRequest(c, "Invalid request body", err)
		return
	}

	category, ok := search.ParseCategory(req.Category)
	if !ok {
		render.BadRequest(c, "Unknown category: "+req.Category, nil)
		return
	}

	if err := h.session.SetCategory(c.Request.Context(), category); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Select handles POST /api/v1/search/select
func (h *SearchHandler) Select(c *gin.Context) {
	var req SelectItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		render.BadRequest(c, "Invalid request body", err)
		return
	}

	category, ok := search.ParseCategory(req.Category)
	if !ok {
		render.BadRequest(c, "Unknown category: "+req.Category, nil)
		return
	}

	if err := h.session.Select(c.Request.Context(), category, req.ID); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Open handles POST /api/v1/search/open
func (h *SearchHandler) Open(c *gin.Context) {
	if err := h.session.Open(c.Request.Context()); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// sessionError maps the session's control errors to status codes
func (h *SearchHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, search.ErrQueryInFlight):
		render.Error(c, http.StatusConflict, "A query is already in flight", nil)
	case errors.Is(err, search.ErrItemNotFound):
		render.NotFound(c, "Item not found in current results")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		render.Error(c, http.StatusServiceUnavailable, "Request cancelled", err)
	default:
		render.Error(c, http.StatusInternalServerError, "Search session failed", err)
	}
}
