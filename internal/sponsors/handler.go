package sponsors

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/pkg/response"
)

// CreateRequest is the body for POST /sponsors.
type CreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	LogoURL  string `json:"logo_url"`
	Website  string `json:"website"`
}

// UpdateRequest is the body for PUT /sponsors/:id.
type UpdateRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	LogoURL  *string `json:"logo_url"`
	Website  *string `json:"website"`
	IsActive *bool   `json:"is_active"`
}

// Handler handles sponsor HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a sponsors handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /sponsors (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s := &models.Sponsor{
		Name:     req.Name,
		Category: req.Category,
		LogoURL:  req.LogoURL,
		Website:  req.Website,
		IsActive: true,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to create sponsor")
		return
	}
	response.Created(c, s)
}

// List handles GET /sponsors. Public callers see active sponsors only; admins
// can pass ?all=1.
func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "1"
	list, err := h.repo.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Internal(c, "failed to list sponsors")
		return
	}
	response.OK(c, list)
}

// Update handles PUT /sponsors/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid sponsor id")
		return
	}
	s, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to update sponsor")
		return
	}
	if s == nil {
		response.NotFound(c, "sponsor not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Category != nil {
		s.Category = *req.Category
	}
	if req.LogoURL != nil {
		s.LogoURL = *req.LogoURL
	}
	if req.Website != nil {
		s.Website = *req.Website
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}

	if err := h.repo.Update(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to update sponsor")
		return
	}
	response.OK(c, s)
}

// Delete handles DELETE /sponsors/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid sponsor id")
		return
	}
	removed, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to delete sponsor")
		return
	}
	if !removed {
		response.NotFound(c, "sponsor not found")
		return
	}
	response.OK(c, gin.H{"message": "sponsor deleted"})
}
