package payments

import (
	"github.com/gin-gonic/gin"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/pkg/response"
)

// UpsertRequest is the body for PUT /payment-setting.
type UpsertRequest struct {
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountHolder string `json:"account_holder" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Notes         string `json:"notes"`
}

// Handler handles payment setting HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a payments handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Get handles GET /payment-setting. Public; returns the active transfer
// destination or 404 when none is configured.
func (h *Handler) Get(c *gin.Context) {
	p, err := h.repo.GetActive(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load payment setting")
		return
	}
	if p == nil {
		response.NotFound(c, "payment setting not configured")
		return
	}
	response.OK(c, p)
}

// Upsert handles PUT /payment-setting (admin only). The new setting replaces
// the active one.
func (h *Handler) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := &models.PaymentSetting{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
		Amount:        req.Amount,
		Notes:         req.Notes,
	}
	if err := h.repo.Upsert(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to save payment setting")
		return
	}
	response.OK(c, p)
}
