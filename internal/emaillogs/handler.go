package emaillogs

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/musda-event/backend/pkg/response"
)

// Handler handles email log HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /emails (admin). Optional ?guest_id narrows to one guest.
func (h *Handler) List(c *gin.Context) {
	var guestID *int64
	if s := c.Query("guest_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid guest_id")
			return
		}
		guestID = &id
	}
	logs, err := h.repo.List(c.Request.Context(), guestID)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}
