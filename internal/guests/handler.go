package guests

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/internal/ticket"
	"github.com/musda-event/backend/pkg/response"
)

// dispatchTimeout bounds the fire-and-forget ticket dispatch that runs after
// the registration response, decoupled from the HTTP request lifecycle.
const dispatchTimeout = 10 * time.Second

// Store is the guest persistence capability the handler needs.
type Store interface {
	Create(ctx context.Context, g *models.Guest) error
	GetByID(ctx context.Context, id int64) (*models.Guest, error)
	GetByToken(ctx context.Context, token string) (*models.Guest, error)
	FindDuplicate(ctx context.Context, email, phone string, excludeID int64) (*models.Guest, error)
	List(ctx context.Context, status models.GuestStatus) ([]models.Guest, error)
	MarkAttended(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, g *models.Guest) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// Dispatcher hands ticket emails to the background queue.
type Dispatcher interface {
	DispatchTicket(ctx context.Context, g *models.Guest, emailType string) ticket.DispatchStatus
	Enabled() bool
}

// Notifier pushes live events to the admin dashboard feed.
type Notifier interface {
	Broadcast(event string, payload interface{})
}

// RegisterRequest is the body for POST /register.
type RegisterRequest struct {
	Nama     string `json:"nama" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Whatsapp string `json:"whatsapp" binding:"required"`
	Instansi string `json:"instansi"`
}

// UpdateRequest is the body for PUT /guest/:id. Absent fields keep their
// current value.
type UpdateRequest struct {
	Nama     *string `json:"nama"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Whatsapp *string `json:"whatsapp"`
	Instansi *string `json:"instansi"`
}

// ScanRequest is the body for POST /scan. Either the full QR payload or the
// bare token is accepted.
type ScanRequest struct {
	Payload string `json:"payload"`
	Token   string `json:"token"`
}

// Handler handles guest HTTP endpoints.
type Handler struct {
	store       Store
	dispatcher  Dispatcher
	notifier    Notifier
	namespace   string
	countryCode string
	logger      *zap.Logger
}

// NewHandler creates a guests handler. notifier may be nil when no live feed
// is wired.
func NewHandler(store Store, dispatcher Dispatcher, notifier Notifier, namespace, countryCode string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:       store,
		dispatcher:  dispatcher,
		notifier:    notifier,
		namespace:   namespace,
		countryCode: countryCode,
		logger:      logger,
	}
}

// Register handles POST /register. Validation runs before any side effect;
// once the guest row exists, downstream failures never roll it back.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	phone, err := NormalizePhone(req.Whatsapp, h.countryCode)
	if err != nil {
		response.BadRequest(c, "invalid whatsapp number")
		return
	}

	existing, err := h.store.FindDuplicate(c.Request.Context(), req.Email, phone, 0)
	if err != nil {
		h.logger.Error("duplicate check failed", zap.Error(err))
		response.Internal(c, "failed to register")
		return
	}
	if existing != nil {
		response.ConflictWithData(c, "duplicate registration: email or whatsapp already registered",
			gin.H{"participant_id": existing.ID})
		return
	}

	token, err := ticket.GenerateToken()
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "failed to register")
		return
	}

	institution := req.Instansi
	if institution == "" {
		institution = models.DefaultInstitution
	}
	g := &models.Guest{
		FullName:    req.Nama,
		Email:       req.Email,
		Phone:       phone,
		Institution: institution,
		Status:      models.GuestStatusPending,
		Token:       token,
		QRPayload:   ticket.BuildPayload(h.namespace, token),
	}
	if err := h.store.Create(c.Request.Context(), g); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Raced past the upfront check; the unique index caught it.
			if existing, findErr := h.store.FindDuplicate(c.Request.Context(), req.Email, phone, 0); findErr == nil && existing != nil {
				response.ConflictWithData(c, "duplicate registration: email or whatsapp already registered",
					gin.H{"participant_id": existing.ID})
				return
			}
			response.Conflict(c, "duplicate registration: email or whatsapp already registered")
			return
		}
		h.logger.Error("create guest failed", zap.Error(err))
		response.Internal(c, "failed to register")
		return
	}

	qr, err := ticket.EncodeDataURL(g.QRPayload)
	if err != nil {
		// Guest stays persisted; recovery is an explicit resend.
		h.logger.Error("encode qr failed", zap.Error(err), zap.Int64("guest_id", g.ID))
		response.Internal(c, "failed to generate ticket")
		return
	}

	response.Created(c, gin.H{"id": g.ID, "qr": qr, "guest": g})

	if h.notifier != nil {
		h.notifier.Broadcast("guest_registered", g)
	}
	go func(g models.Guest) {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		h.dispatcher.DispatchTicket(ctx, &g, models.EmailTypeTicket)
	}(*g)
}

// GetTicket handles GET /ticket/:id. The QR is re-derived from the stored
// token; the rendered image is never authoritative.
func (h *Handler) GetTicket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	g, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("load guest failed", zap.Error(err))
		response.Internal(c, "failed to load ticket")
		return
	}
	if g == nil {
		response.NotFound(c, "guest not found")
		return
	}
	qr, err := ticket.EncodeDataURL(g.QRPayload)
	if err != nil {
		h.logger.Error("encode qr failed", zap.Error(err), zap.Int64("guest_id", g.ID))
		response.Internal(c, "failed to generate ticket")
		return
	}
	response.OK(c, gin.H{"guest": g, "qr": qr})
}

// Scan handles POST /scan (check-in desk). pending transitions to attended
// exactly once; scanning an attended guest reports no change without error.
func (h *Handler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	raw := req.Payload
	if raw == "" {
		raw = req.Token
	}
	token, err := ticket.ParsePayload(h.namespace, raw)
	if err != nil {
		response.BadRequest(c, "invalid ticket payload")
		return
	}

	g, err := h.store.GetByToken(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("load guest by token failed", zap.Error(err))
		response.Internal(c, "scan failed")
		return
	}
	if g == nil {
		response.NotFound(c, "ticket not recognized")
		return
	}

	changed, err := h.store.MarkAttended(c.Request.Context(), g.ID)
	if err != nil {
		h.logger.Error("mark attended failed", zap.Error(err), zap.Int64("guest_id", g.ID))
		response.Internal(c, "scan failed")
		return
	}

	msg := "guest already checked in"
	if changed {
		msg = "check-in recorded"
		now := time.Now()
		g.Status = models.GuestStatusAttended
		g.AttendedAt = &now
		if h.notifier != nil {
			h.notifier.Broadcast("guest_checked_in", g)
		}
	}
	response.OK(c, gin.H{"message": msg, "changed": changed, "guest": g})
}

// List handles GET /guests (admin). Optional ?filter=hadir|belum narrows by
// attendance status.
func (h *Handler) List(c *gin.Context) {
	var status models.GuestStatus
	switch c.Query("filter") {
	case "":
	case "hadir":
		status = models.GuestStatusAttended
	case "belum":
		status = models.GuestStatusPending
	default:
		response.BadRequest(c, "invalid filter: use hadir or belum")
		return
	}
	list, err := h.store.List(c.Request.Context(), status)
	if err != nil {
		h.logger.Error("list guests failed", zap.Error(err))
		response.Internal(c, "failed to list guests")
		return
	}
	response.OK(c, list)
}

// Update handles PUT /guest/:id (admin).
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	g, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to update guest")
		return
	}
	if g == nil {
		response.NotFound(c, "guest not found")
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Nama != nil {
		g.FullName = *req.Nama
	}
	if req.Email != nil {
		g.Email = *req.Email
	}
	if req.Whatsapp != nil {
		phone, err := NormalizePhone(*req.Whatsapp, h.countryCode)
		if err != nil {
			response.BadRequest(c, "invalid whatsapp number")
			return
		}
		g.Phone = phone
	}
	if req.Instansi != nil {
		g.Institution = *req.Instansi
	}

	existing, err := h.store.FindDuplicate(c.Request.Context(), g.Email, g.Phone, g.ID)
	if err != nil {
		response.Internal(c, "failed to update guest")
		return
	}
	if existing != nil {
		response.ConflictWithData(c, "email or whatsapp already registered to another guest",
			gin.H{"participant_id": existing.ID})
		return
	}

	if err := h.store.Update(c.Request.Context(), g); err != nil {
		if errors.Is(err, ErrDuplicate) {
			response.Conflict(c, "email or whatsapp already registered to another guest")
			return
		}
		h.logger.Error("update guest failed", zap.Error(err), zap.Int64("guest_id", g.ID))
		response.Internal(c, "failed to update guest")
		return
	}
	response.OK(c, g)
}

// Delete handles DELETE /guest/:id (admin). Hard delete.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	removed, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("delete guest failed", zap.Error(err), zap.Int64("guest_id", id))
		response.Internal(c, "failed to delete guest")
		return
	}
	if !removed {
		response.NotFound(c, "guest not found")
		return
	}
	response.OK(c, gin.H{"message": "guest deleted"})
}

// ResendTicket handles POST /send-ticket/:id. Re-derives the QR artifact from
// the stored token and re-invokes the dispatcher.
func (h *Handler) ResendTicket(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	g, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to resend ticket")
		return
	}
	if g == nil {
		response.NotFound(c, "guest not found")
		return
	}

	status := h.dispatcher.DispatchTicket(c.Request.Context(), g, models.EmailTypeResend)
	switch status {
	case ticket.StatusDisabled:
		response.OK(c, gin.H{"message": "email disabled (development mode)", "status": status})
	case ticket.StatusQueued:
		response.OK(c, gin.H{"message": "ticket email queued", "status": status})
	default:
		response.Internal(c, "failed to queue ticket email")
	}
}
