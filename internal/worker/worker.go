package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/internal/ticket"
	"github.com/musda-event/backend/pkg/mailer"
	"github.com/musda-event/backend/pkg/queue"
)

// sendTimeout bounds one delivery attempt so a slow SMTP relay cannot hold a
// worker slot indefinitely.
const sendTimeout = 30 * time.Second

// GuestStore loads guests for email jobs.
type GuestStore interface {
	GetByID(ctx context.Context, id int64) (*models.Guest, error)
}

// EmailLogStore records delivery outcomes.
type EmailLogStore interface {
	Create(ctx context.Context, log *models.EmailLog) error
}

// TicketStore keeps a copy of the rendered ticket PNG in the content store.
type TicketStore interface {
	PutTicketImage(ctx context.Context, guestID int64, png []byte) (string, error)
}

// EmailProcessor processes ticket email jobs: re-derive the QR image from the
// guest's stored token, attach it inline, send, record the outcome.
type EmailProcessor struct {
	guests GuestStore
	logs   EmailLogStore
	store  TicketStore // optional; nil skips the content-store copy
	sender mailer.Sender
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEmailProcessor creates a ticket email processor.
func NewEmailProcessor(guests GuestStore, logs EmailLogStore, store TicketStore, sender mailer.Sender, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{guests: guests, logs: logs, store: store, sender: sender, queue: q, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	g, err := p.guests.GetByID(ctx, payload.GuestID)
	if err != nil {
		return fmt.Errorf("load guest: %w", err)
	}
	if g == nil {
		// Guest was deleted after the job was enqueued; nothing to retry.
		p.logger.Warn("guest gone, email job dropped", zap.Int64("guest_id", payload.GuestID), zap.String("job_id", job.ID))
		return nil
	}

	png, err := ticket.EncodePNG(g.QRPayload)
	if err != nil {
		return fmt.Errorf("render qr: %w", err)
	}

	if p.store != nil {
		if _, err := p.store.PutTicketImage(ctx, g.ID, png); err != nil {
			// The copy is a convenience; delivery proceeds from memory.
			p.logger.Warn("ticket image upload failed", zap.Error(err), zap.Int64("guest_id", g.ID))
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	sendErr := p.sender.Send(sendCtx, mailer.Message{
		To:      payload.RecipientEmail,
		ToName:  g.FullName,
		Subject: payload.Subject,
		HTML:    payload.BodyHTML,
		Inlines: []mailer.Inline{{
			Name:        ticket.InlineQRName,
			ContentType: "image/png",
			Data:        png,
		}},
	})

	p.record(ctx, g.ID, payload, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send: %w", sendErr)
	}
	p.logger.Info("ticket email sent",
		zap.Int64("guest_id", g.ID),
		zap.String("email_type", payload.EmailType),
	)
	return nil
}

func (p *EmailProcessor) record(ctx context.Context, guestID int64, payload queue.EmailPayload, sendErr error) {
	log := &models.EmailLog{
		GuestID:        &guestID,
		EmailType:      payload.EmailType,
		RecipientEmail: payload.RecipientEmail,
		Subject:        payload.Subject,
		Status:         models.EmailLogStatusSent,
	}
	if sendErr != nil {
		log.Status = models.EmailLogStatusFailed
		log.ErrorMessage = sendErr.Error()
	} else {
		now := time.Now()
		log.SentAt = &now
	}
	if err := p.logs.Create(ctx, log); err != nil {
		p.logger.Error("write email log failed", zap.Error(err), zap.Int64("guest_id", guestID))
	}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("email worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
		}
	}
}
