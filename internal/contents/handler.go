package contents

import (
	"github.com/gin-gonic/gin"

	"github.com/musda-event/backend/pkg/response"
)

// SetRequest is the body for PUT /contents/:key.
type SetRequest struct {
	Value string `json:"value" binding:"required"`
}

// Handler handles editable site content HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a contents handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Get handles GET /contents/:key. Public.
func (h *Handler) Get(c *gin.Context) {
	content, err := h.repo.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Internal(c, "failed to load content")
		return
	}
	if content == nil {
		response.NotFound(c, "content not found")
		return
	}
	response.OK(c, content)
}

// List handles GET /contents (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list contents")
		return
	}
	response.OK(c, list)
}

// Set handles PUT /contents/:key (admin only).
func (h *Handler) Set(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	content, err := h.repo.Set(c.Request.Context(), c.Param("key"), req.Value)
	if err != nil {
		response.Internal(c, "failed to save content")
		return
	}
	response.OK(c, content)
}

// Delete handles DELETE /contents/:key (admin only).
func (h *Handler) Delete(c *gin.Context) {
	removed, err := h.repo.Delete(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Internal(c, "failed to delete content")
		return
	}
	if !removed {
		response.NotFound(c, "content not found")
		return
	}
	response.OK(c, gin.H{"message": "content deleted"})
}
