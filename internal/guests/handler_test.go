package guests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musda-event/backend/internal/models"
	"github.com/musda-event/backend/internal/ticket"
)

type fakeStore struct {
	guests map[int64]*models.Guest
	nextID int64

	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{guests: make(map[int64]*models.Guest), nextID: 1}
}

func (s *fakeStore) Create(_ context.Context, g *models.Guest) error {
	if s.createErr != nil {
		return s.createErr
	}
	if dup := s.findDup(g.Email, g.Phone, 0); dup != nil {
		return ErrDuplicate
	}
	g.ID = s.nextID
	s.nextID++
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	cp := *g
	s.guests[g.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*models.Guest, error) {
	if g, ok := s.guests[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) GetByToken(_ context.Context, token string) (*models.Guest, error) {
	for _, g := range s.guests {
		if g.Token == token {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) findDup(email, phone string, excludeID int64) *models.Guest {
	for _, g := range s.guests {
		if g.ID == excludeID {
			continue
		}
		if g.Email == email || g.Phone == phone {
			return g
		}
	}
	return nil
}

func (s *fakeStore) FindDuplicate(_ context.Context, email, phone string, excludeID int64) (*models.Guest, error) {
	if g := s.findDup(email, phone, excludeID); g != nil {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) List(_ context.Context, status models.GuestStatus) ([]models.Guest, error) {
	var list []models.Guest
	for _, g := range s.guests {
		if status != "" && g.Status != status {
			continue
		}
		list = append(list, *g)
	}
	return list, nil
}

func (s *fakeStore) MarkAttended(_ context.Context, id int64) (bool, error) {
	g, ok := s.guests[id]
	if !ok || g.Status != models.GuestStatusPending {
		return false, nil
	}
	now := time.Now()
	g.Status = models.GuestStatusAttended
	g.AttendedAt = &now
	return true, nil
}

func (s *fakeStore) Update(_ context.Context, g *models.Guest) error {
	if dup := s.findDup(g.Email, g.Phone, g.ID); dup != nil {
		return ErrDuplicate
	}
	cp := *g
	s.guests[g.ID] = &cp
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := s.guests[id]; !ok {
		return false, nil
	}
	delete(s.guests, id)
	return true, nil
}

type fakeDispatcher struct {
	status     ticket.DispatchStatus
	dispatched chan string // email types, buffered
}

func newFakeDispatcher(status ticket.DispatchStatus) *fakeDispatcher {
	return &fakeDispatcher{status: status, dispatched: make(chan string, 8)}
}

func (d *fakeDispatcher) DispatchTicket(_ context.Context, _ *models.Guest, emailType string) ticket.DispatchStatus {
	d.dispatched <- emailType
	return d.status
}

func (d *fakeDispatcher) Enabled() bool { return d.status != ticket.StatusDisabled }

func (d *fakeDispatcher) waitForDispatch(t *testing.T) string {
	t.Helper()
	select {
	case et := <-d.dispatched:
		return et
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch never happened")
		return ""
	}
}

type fakeNotifier struct {
	events []string
}

func (n *fakeNotifier) Broadcast(event string, _ interface{}) {
	n.events = append(n.events, event)
}

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Error   string                 `json:"error"`
}

func setupHandler(store *fakeStore, d *fakeDispatcher) (*Handler, *fakeNotifier) {
	gin.SetMode(gin.TestMode)
	n := &fakeNotifier{}
	return NewHandler(store, d, n, "MUSDA", "62", nil), n
}

func doJSON(handler gin.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	router := gin.New()
	router.Handle(method, pattern(target), handler)
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

// pattern maps a concrete request path onto the route parameter layout the
// handlers expect.
func pattern(target string) string {
	parts := strings.Split(strings.Split(target, "?")[0], "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := fmt.Sscanf(p, "%d", new(int64)); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestRegisterSuccess(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, n := setupHandler(store, d)

	w := doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama":     "Siti Rahma",
		"email":    "siti@example.com",
		"whatsapp": "08123456789",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	e := decode(t, w)
	assert.True(t, e.Success)
	assert.NotNil(t, e.Data["id"])
	qr, _ := e.Data["qr"].(string)
	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))

	g := store.guests[1]
	require.NotNil(t, g)
	assert.Equal(t, "+628123456789", g.Phone)
	assert.Equal(t, models.DefaultInstitution, g.Institution)
	assert.Equal(t, models.GuestStatusPending, g.Status)
	assert.Len(t, g.Token, ticket.TokenHexLen)
	assert.Equal(t, "MUSDA|"+g.Token, g.QRPayload)

	assert.Equal(t, models.EmailTypeTicket, d.waitForDispatch(t))
	assert.Contains(t, n.events, "guest_registered")
}

func TestRegisterValidation(t *testing.T) {
	store := newFakeStore()
	h, _ := setupHandler(store, newFakeDispatcher(ticket.StatusQueued))

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing nama", gin.H{"email": "a@b.com", "whatsapp": "08123456789"}},
		{"missing email", gin.H{"nama": "A", "whatsapp": "08123456789"}},
		{"bad email", gin.H{"nama": "A", "email": "not-an-email", "whatsapp": "08123456789"}},
		{"missing whatsapp", gin.H{"nama": "A", "email": "a@b.com"}},
		{"bad whatsapp", gin.H{"nama": "A", "email": "a@b.com", "whatsapp": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(h.Register, http.MethodPost, "/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, store.guests, "validation failure must not persist anything")
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, _ := setupHandler(store, d)

	w := doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	d.waitForDispatch(t)

	// Same phone written differently still collides after normalization.
	w = doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama": "Lain", "email": "lain@example.com", "whatsapp": "+62 812-3456-789",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	e := decode(t, w)
	assert.False(t, e.Success)
	assert.Equal(t, float64(1), e.Data["participant_id"])
	assert.Len(t, store.guests, 1)
}

func TestGetTicket(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, _ := setupHandler(store, d)

	w := doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	d.waitForDispatch(t)

	w = doJSON(h.GetTicket, http.MethodGet, "/ticket/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	e := decode(t, w)
	qr, _ := e.Data["qr"].(string)
	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))

	w = doJSON(h.GetTicket, http.MethodGet, "/ticket/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScan(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, n := setupHandler(store, d)

	w := doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	d.waitForDispatch(t)
	payload := store.guests[1].QRPayload

	// First scan flips pending to attended.
	w = doJSON(h.Scan, http.MethodPost, "/scan", gin.H{"payload": payload})
	require.Equal(t, http.StatusOK, w.Code)
	e := decode(t, w)
	assert.Equal(t, true, e.Data["changed"])
	assert.Equal(t, string(models.GuestStatusAttended), string(store.guests[1].Status))
	assert.Contains(t, n.events, "guest_checked_in")

	// Second scan reports no change without error.
	w = doJSON(h.Scan, http.MethodPost, "/scan", gin.H{"payload": payload})
	require.Equal(t, http.StatusOK, w.Code)
	e = decode(t, w)
	assert.Equal(t, false, e.Data["changed"])
}

func TestScanBareToken(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, _ := setupHandler(store, d)

	w := doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	d.waitForDispatch(t)

	w = doJSON(h.Scan, http.MethodPost, "/scan", gin.H{"token": store.guests[1].Token})
	require.Equal(t, http.StatusOK, w.Code)
	e := decode(t, w)
	assert.Equal(t, true, e.Data["changed"])
}

func TestScanUnknownAndMalformed(t *testing.T) {
	store := newFakeStore()
	h, _ := setupHandler(store, newFakeDispatcher(ticket.StatusQueued))

	w := doJSON(h.Scan, http.MethodPost, "/scan", gin.H{"payload": "MUSDA|" + strings.Repeat("ab", 32)})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(h.Scan, http.MethodPost, "/scan", gin.H{"payload": "garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResendTicketDisabled(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, _ := setupHandler(store, d)

	w := doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	d.waitForDispatch(t)

	d.status = ticket.StatusDisabled
	w = doJSON(h.ResendTicket, http.MethodPost, "/send-ticket/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	e := decode(t, w)
	assert.Contains(t, e.Data["message"], "development mode")
}

func TestUpdateGuestDuplicateGuard(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, _ := setupHandler(store, d)

	for _, body := range []gin.H{
		{"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789"},
		{"nama": "Budi", "email": "budi@example.com", "whatsapp": "08129876543"},
	} {
		w := doJSON(h.Register, http.MethodPost, "/register", body)
		require.Equal(t, http.StatusCreated, w.Code)
		d.waitForDispatch(t)
	}

	// Moving Budi onto Siti's email must 409 with her id.
	w := doJSON(h.Update, http.MethodPut, "/guest/2", gin.H{"email": "siti@example.com"})
	require.Equal(t, http.StatusConflict, w.Code)
	e := decode(t, w)
	assert.Equal(t, float64(1), e.Data["participant_id"])

	// A plain rename goes through.
	w = doJSON(h.Update, http.MethodPut, "/guest/2", gin.H{"nama": "Budi Santoso"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Budi Santoso", store.guests[2].FullName)
}

func TestDeleteGuest(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, _ := setupHandler(store, d)

	w := doJSON(h.Register, http.MethodPost, "/register", gin.H{
		"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	d.waitForDispatch(t)

	w = doJSON(h.Delete, http.MethodDelete, "/guest/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.guests)

	w = doJSON(h.Delete, http.MethodDelete, "/guest/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListFilter(t *testing.T) {
	store := newFakeStore()
	d := newFakeDispatcher(ticket.StatusQueued)
	h, _ := setupHandler(store, d)

	for _, body := range []gin.H{
		{"nama": "Siti", "email": "siti@example.com", "whatsapp": "08123456789"},
		{"nama": "Budi", "email": "budi@example.com", "whatsapp": "08129876543"},
	} {
		w := doJSON(h.Register, http.MethodPost, "/register", body)
		require.Equal(t, http.StatusCreated, w.Code)
		d.waitForDispatch(t)
	}
	_, err := store.MarkAttended(context.Background(), 1)
	require.NoError(t, err)

	listLen := func(target string) (int, int) {
		w := doJSON(h.List, http.MethodGet, target, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var e struct {
			Data []models.Guest `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		return w.Code, len(e.Data)
	}

	_, n := listLen("/guests")
	assert.Equal(t, 2, n)
	_, n = listLen("/guests?filter=hadir")
	assert.Equal(t, 1, n)
	_, n = listLen("/guests?filter=belum")
	assert.Equal(t, 1, n)

	w := doJSON(h.List, http.MethodGet, "/guests?filter=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
