package ticket

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/pkg/queue"
)

type fakeQueue struct {
	payloads []queue.EmailPayload
	err      error
}

func (f *fakeQueue) EnqueueEmail(_ context.Context, p queue.EmailPayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, p)
	return nil
}

func testGuest() *models.Guest {
	return &models.Guest{
		ID:          7,
		FullName:    "Siti Rahma",
		Email:       "siti@example.com",
		Phone:       "+628123456789",
		Institution: "Umum",
		Status:      models.GuestStatusPending,
	}
}

func TestDispatchTicketDisabled(t *testing.T) {
	q := &fakeQueue{}
	d := NewDispatcher(q, false, "MUSDA", nil)

	status := d.DispatchTicket(context.Background(), testGuest(), models.EmailTypeTicket)

	assert.Equal(t, StatusDisabled, status)
	assert.False(t, d.Enabled())
	assert.Empty(t, q.payloads, "disabled dispatch must not touch the queue")
}

func TestDispatchTicketQueued(t *testing.T) {
	q := &fakeQueue{}
	d := NewDispatcher(q, true, "MUSDA", nil)

	status := d.DispatchTicket(context.Background(), testGuest(), models.EmailTypeTicket)

	assert.Equal(t, StatusQueued, status)
	require.Len(t, q.payloads, 1)
	p := q.payloads[0]
	assert.Equal(t, int64(7), p.GuestID)
	assert.Equal(t, models.EmailTypeTicket, p.EmailType)
	assert.Equal(t, "siti@example.com", p.RecipientEmail)
	assert.Equal(t, "E-Ticket MUSDA - Siti Rahma", p.Subject)
	assert.Contains(t, p.BodyHTML, "cid:"+InlineQRName)
	assert.Contains(t, p.BodyHTML, "Siti Rahma")
}

func TestDispatchTicketEnqueueFailure(t *testing.T) {
	q := &fakeQueue{err: errors.New("redis down")}
	d := NewDispatcher(q, true, "MUSDA", nil)

	status := d.DispatchTicket(context.Background(), testGuest(), models.EmailTypeResend)

	assert.Equal(t, StatusFailed, status)
}

func TestComposeBodyEscapesGuestFields(t *testing.T) {
	d := NewDispatcher(&fakeQueue{}, true, "MUSDA", nil)
	g := testGuest()
	g.FullName = `<script>alert("x")</script>`

	body := d.composeBody(g)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
