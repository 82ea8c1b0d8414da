package ticket

import (
	"context"
	"fmt"
	"html"

	"go.uber.org/zap"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/pkg/queue"
)

// DispatchStatus is the outcome of handing a ticket email to the queue. It
// describes the hand-off only; delivery results live in email_logs.
type DispatchStatus string

const (
	// StatusQueued means the job was handed to the background queue.
	StatusQueued DispatchStatus = "queued"
	// StatusDisabled means outbound email is switched off; nothing was
	// enqueued and no network I/O happened.
	StatusDisabled DispatchStatus = "disabled"
	// StatusFailed means the enqueue itself failed. Logged, never surfaced
	// to the registering caller.
	StatusFailed DispatchStatus = "failed"
)

// EmailQueue is the queue capability the dispatcher needs.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// Dispatcher composes ticket emails and hands them to the background queue.
// It runs after the registration response has been prepared; its outcome is
// never part of the synchronous registration result.
type Dispatcher struct {
	queue     EmailQueue
	enabled   bool
	eventName string
	logger    *zap.Logger
}

// NewDispatcher creates a ticket dispatcher. When enabled is false every
// dispatch short-circuits with StatusDisabled.
func NewDispatcher(q EmailQueue, enabled bool, eventName string, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: q, enabled: enabled, eventName: eventName, logger: logger}
}

// Enabled reports whether outbound email is switched on.
func (d *Dispatcher) Enabled() bool { return d.enabled }

// DispatchTicket enqueues the ticket email for a guest.
func (d *Dispatcher) DispatchTicket(ctx context.Context, g *models.Guest, emailType string) DispatchStatus {
	if !d.enabled {
		d.logger.Info("email disabled, ticket dispatch skipped",
			zap.Int64("guest_id", g.ID),
			zap.String("email_type", emailType),
		)
		return StatusDisabled
	}

	payload := queue.EmailPayload{
		GuestID:        g.ID,
		EmailType:      emailType,
		RecipientEmail: g.Email,
		Subject:        fmt.Sprintf("E-Ticket %s - %s", d.eventName, g.FullName),
		BodyHTML:       d.composeBody(g),
	}
	if err := d.queue.EnqueueEmail(ctx, payload); err != nil {
		d.logger.Error("enqueue ticket email failed",
			zap.Error(err),
			zap.Int64("guest_id", g.ID),
			zap.String("email_type", emailType),
		)
		return StatusFailed
	}
	return StatusQueued
}

// composeBody builds the HTML ticket email. The QR image is referenced by
// content-id and attached inline by the worker.
func (d *Dispatcher) composeBody(g *models.Guest) string {
	name := html.EscapeString(g.FullName)
	email := html.EscapeString(g.Email)
	institution := html.EscapeString(g.Institution)
	return fmt.Sprintf(`<html><body>
<h2>%s</h2>
<p>Halo <b>%s</b>,</p>
<p>Registrasi Anda sudah kami terima. Tunjukkan QR code di bawah ini kepada panitia saat check-in.</p>
<p><img src="cid:%s" alt="QR e-ticket" width="%d" height="%d"/></p>
<table>
<tr><td>Nama</td><td>: %s</td></tr>
<tr><td>Email</td><td>: %s</td></tr>
<tr><td>Instansi</td><td>: %s</td></tr>
</table>
<p>Sampai jumpa di lokasi acara.</p>
</body></html>`,
		d.eventName, name, InlineQRName, qrImageSize, qrImageSize,
		name, email, institution)
}

// InlineQRName is the content-id under which the QR PNG is attached.
const InlineQRName = "qr-ticket"
