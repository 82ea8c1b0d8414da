package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/internal/ticket"
	"github.com/musda-event/backend/pkg/mailer"
	"github.com/musda-event/backend/pkg/queue"
)

type fakeGuests struct {
	guest *models.Guest
	err   error
}

func (f *fakeGuests) GetByID(_ context.Context, _ int64) (*models.Guest, error) {
	return f.guest, f.err
}

type fakeLogs struct {
	logs []*models.EmailLog
}

func (f *fakeLogs) Create(_ context.Context, l *models.EmailLog) error {
	f.logs = append(f.logs, l)
	return nil
}

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeTicketStore struct {
	puts int
	err  error
}

func (f *fakeTicketStore) PutTicketImage(_ context.Context, _ int64, _ []byte) (string, error) {
	f.puts++
	return "https://bucket/tickets/1.png", f.err
}

func emailJob(t *testing.T, guestID int64) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.EmailPayload{
		GuestID:        guestID,
		EmailType:      models.EmailTypeTicket,
		RecipientEmail: "siti@example.com",
		Subject:        "E-Ticket MUSDA - Siti",
		BodyHTML:       "<html></html>",
	})
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypeEmail, Payload: payload}
}

func workerGuest() *models.Guest {
	token := strings.Repeat("ab", 32)
	return &models.Guest{
		ID:        1,
		FullName:  "Siti",
		Email:     "siti@example.com",
		Token:     token,
		QRPayload: "MUSDA|" + token,
		Status:    models.GuestStatusPending,
	}
}

func TestProcessSendsInlineQR(t *testing.T) {
	guests := &fakeGuests{guest: workerGuest()}
	logs := &fakeLogs{}
	sender := &fakeSender{}
	store := &fakeTicketStore{}
	p := NewEmailProcessor(guests, logs, store, sender, nil, nil)

	err := p.Process(context.Background(), emailJob(t, 1))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "siti@example.com", msg.To)
	require.Len(t, msg.Inlines, 1)
	assert.Equal(t, ticket.InlineQRName, msg.Inlines[0].Name)
	assert.Equal(t, "image/png", msg.Inlines[0].ContentType)

	// The attached PNG must be the QR re-derived from the stored token.
	want, err := ticket.EncodePNG(guests.guest.QRPayload)
	require.NoError(t, err)
	assert.Equal(t, want, msg.Inlines[0].Data)

	assert.Equal(t, 1, store.puts)
	require.Len(t, logs.logs, 1)
	assert.Equal(t, models.EmailLogStatusSent, logs.logs[0].Status)
	assert.NotNil(t, logs.logs[0].SentAt)
}

func TestProcessRecordsFailure(t *testing.T) {
	logs := &fakeLogs{}
	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	p := NewEmailProcessor(&fakeGuests{guest: workerGuest()}, logs, nil, sender, nil, nil)

	err := p.Process(context.Background(), emailJob(t, 1))
	require.Error(t, err)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, models.EmailLogStatusFailed, logs.logs[0].Status)
	assert.Contains(t, logs.logs[0].ErrorMessage, "connection refused")
	assert.Nil(t, logs.logs[0].SentAt)
}

func TestProcessDropsJobForDeletedGuest(t *testing.T) {
	logs := &fakeLogs{}
	sender := &fakeSender{}
	p := NewEmailProcessor(&fakeGuests{guest: nil}, logs, nil, sender, nil, nil)

	err := p.Process(context.Background(), emailJob(t, 42))
	require.NoError(t, err, "deleted guest is not a retryable failure")
	assert.Empty(t, sender.sent)
	assert.Empty(t, logs.logs)
}

func TestProcessSurvivesTicketStoreFailure(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeTicketStore{err: errors.New("s3 unavailable")}
	p := NewEmailProcessor(&fakeGuests{guest: workerGuest()}, &fakeLogs{}, store, sender, nil, nil)

	err := p.Process(context.Background(), emailJob(t, 1))
	require.NoError(t, err)
	assert.Len(t, sender.sent, 1, "delivery proceeds from memory when the copy upload fails")
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewEmailProcessor(&fakeGuests{}, &fakeLogs{}, nil, &fakeSender{}, nil, nil)
	err := p.Process(context.Background(), &queue.Job{ID: "x", Type: "mystery"})
	assert.Error(t, err)
}
