package agendas

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/pkg/response"
)

// CreateRequest is the body for POST /agendas.
type CreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	StartsAt    string  `json:"starts_at" binding:"required"`
	EndsAt      *string `json:"ends_at"`
	Location    string  `json:"location"`
	Speaker     string  `json:"speaker"`
}

// UpdateRequest is the body for PUT /agendas/:id.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartsAt    *string `json:"starts_at"`
	EndsAt      *string `json:"ends_at"`
	Location    *string `json:"location"`
	Speaker     *string `json:"speaker"`
	IsActive    *bool   `json:"is_active"`
}

// Handler handles agenda HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an agendas handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /agendas (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		response.BadRequest(c, "invalid starts_at")
		return
	}
	var endsAt *time.Time
	if req.EndsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndsAt)
		if err != nil {
			response.BadRequest(c, "invalid ends_at")
			return
		}
		endsAt = &t
	}

	a := &models.Agenda{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Location:    req.Location,
		Speaker:     req.Speaker,
		IsActive:    true,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		response.Internal(c, "failed to create agenda")
		return
	}
	response.Created(c, a)
}

// List handles GET /agendas. Public callers see active items only; admins can
// pass ?all=1.
func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "1"
	list, err := h.repo.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Internal(c, "failed to list agendas")
		return
	}
	response.OK(c, list)
}

// Update handles PUT /agendas/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid agenda id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to update agenda")
		return
	}
	if a == nil {
		response.NotFound(c, "agenda not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.StartsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			response.BadRequest(c, "invalid starts_at")
			return
		}
		a.StartsAt = t
	}
	if req.EndsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.EndsAt)
		if err != nil {
			response.BadRequest(c, "invalid ends_at")
			return
		}
		a.EndsAt = &t
	}
	if req.Location != nil {
		a.Location = *req.Location
	}
	if req.Speaker != nil {
		a.Speaker = *req.Speaker
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := h.repo.Update(c.Request.Context(), a); err != nil {
		response.Internal(c, "failed to update agenda")
		return
	}
	response.OK(c, a)
}

// Delete handles DELETE /agendas/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid agenda id")
		return
	}
	removed, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete agenda")
		return
	}
	if !removed {
		response.NotFound(c, "agenda not found")
		return
	}
	response.OK(c, gin.H{"message": "agenda deleted"})
}
