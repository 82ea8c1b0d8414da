package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/pkg/response"
	"github.com/musda-event/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register (admin only).
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"` // optional, defaults to admin
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string             `json:"token"`
	Admin models.AdminPublic `json:"admin"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	admin, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("load admin failed", zap.Error(err))
		response.Internal(c, "login failed")
		return
	}
	if admin == nil || !utils.CheckPassword(req.Password, admin.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(admin.ID, admin.Email, string(admin.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, Admin: admin.ToPublic()})
}

// Register handles POST /auth/register. Caller must already hold an admin JWT.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	role := models.RoleAdmin
	switch req.Role {
	case "", "admin":
	case "scanner":
		role = models.RoleScanner
	default:
		response.BadRequest(c, "invalid role")
		return
	}

	existing, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Internal(c, "failed to create admin")
		return
	}
	if existing != nil {
		response.Conflict(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	admin, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, role)
	if err != nil {
		h.logger.Error("create admin failed", zap.Error(err))
		response.Internal(c, "failed to create admin")
		return
	}

	response.Created(c, admin.ToPublic())
}

// List handles GET /admins (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list admins")
		return
	}
	response.OK(c, list)
}
