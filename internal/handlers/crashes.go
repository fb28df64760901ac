package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"spotdesk/internal/handlers/render"
	"spotdesk/internal/models"
	"spotdesk/internal/repositories"
)

const defaultCrashListLimit = 100

// CrashHandler serves the crash log
type CrashHandler struct {
	crashes repositories.CrashRepository
}

// NewCrashHandler creates a new crash handler
func NewCrashHandler(crashes repositories.CrashRepository) *CrashHandler {
	return &CrashHandler{crashes: crashes}
}

// CrashView is a crash record plus its preformatted report line
type CrashView struct {
	*models.CrashRecord
	Report string `json:"report"`
}

// List handles GET /api/v1/crashes. The latest limit records are returned
// oldest first.
func (h *CrashHandler) List(c *gin.Context) {
	limit := defaultCrashListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			render.BadRequest(c, "limit must be a non-negative integer", err)
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.crashes.FindAll(ctx, limit)
	if err != nil {
		render.Error(c, http.StatusInternalServerError, "Failed to load crash log", err)
		return
	}

	views := make([]CrashView, 0, len(records))
	for _, record := range records {
		views = append(views, CrashView{CrashRecord: record, Report: record.Report()})
	}
	render.List(c, views)
}

// Get handles GET /api/v1/crashes/:id
func (h *CrashHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		render.BadRequest(c, "Invalid crash ID", err)
		return
	}

	record, err := h.crashes.FindByID(c.Request.Context(), id)
	if err != nil {
		render.Error(c, http.StatusInternalServerError, "Failed to load crash record", err)
		return
	}
	if record == nil {
		render.NotFound(c, "Crash record not found")
		return
	}
	c.JSON(http.StatusOK, CrashView{CrashRecord: record, Report: record.Report()})
}

// Prune handles DELETE /api/v1/crashes?older_than=720h
func (h *CrashHandler) Prune(c *gin.Context) {
	olderThan, err := time.ParseDuration(c.Query("older_than"))
	if err != nil || olderThan <= 0 {
		render.BadRequest(c, "older_than must be a positive duration", err)
		return
	}

	deleted, err := h.crashes.DeleteOlderThan(c.Request.Context(), time.Now().Add(-olderThan))
	if err != nil {
		render.Error(c, http.StatusInternalServerError, "Failed to prune crash log", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
