package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/journal"
	"github.com/btouchard/beacon/internal/notification"
)

func newTestRouter(t *testing.T, opts ...func(*Deps)) (http.Handler, *hub.Hub) {
	t.Helper()
	h := hub.New(hub.Options{Capacity: 10})
	t.Cleanup(h.Close)

	deps := Deps{
		Hub:            h,
		Version:        "test",
		AllowedOrigins: []string{"*"},
	}
	for _, o := range opts {
		o(&deps)
	}
	return NewRouter(deps), h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestWebhook_CreatesNotification(t *testing.T) {
	t.Parallel()
	r, h := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/webhook/notifications",
		`{"title":"Sale","message":"Item sold","type":"success","sender":"shop","timestamp":"2026-03-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[webhookResponse](t, rec)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Notification.ID)
	assert.Equal(t, "Sale", resp.Notification.Title)
	assert.Equal(t, notification.TypeSuccess, resp.Notification.Type)
	assert.Equal(t, "shop", resp.Notification.Sender)
	assert.False(t, resp.Notification.Read)
	assert.True(t, resp.Notification.Timestamp.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, []notification.Notification{resp.Notification}, h.Snapshot())
}

func TestWebhook_AppliesDefaults(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/webhook/notifications", `{"title":"T","message":"M"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[webhookResponse](t, rec)
	assert.Equal(t, notification.TypeInfo, resp.Notification.Type)
	assert.Equal(t, notification.DefaultSender, resp.Notification.Sender)
}

func TestWebhook_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing title", `{"message":"M"}`, http.StatusBadRequest, "Title and message are required"},
		{"missing message", `{"title":"T"}`, http.StatusBadRequest, "Title and message are required"},
		{"blank title", `{"title":"  ","message":"M"}`, http.StatusBadRequest, "Title and message are required"},
		{"null title", `{"title":null,"message":"M"}`, http.StatusBadRequest, "Title and message are required"},
		{"empty object", `{}`, http.StatusBadRequest, "Title and message are required"},
		{"malformed json", `{"title":`, http.StatusBadRequest, "Invalid JSON body"},
		{"array body", `[1,2]`, http.StatusBadRequest, "Invalid notification payload"},
		{"numeric title", `{"title":5,"message":"M"}`, http.StatusBadRequest, "Invalid notification payload"},
		{"object sender", `{"title":"T","message":"M","sender":{}}`, http.StatusBadRequest, "Invalid notification payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, h := newTestRouter(t)

			rec := do(t, r, http.MethodPost, "/webhook/notifications", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode[errorResponse](t, rec).Error)
			assert.Empty(t, h.Snapshot())
		})
	}
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	t.Parallel()
	r, h := newTestRouter(t, func(d *Deps) { d.MaxBodyBytes = 32 })

	rec := do(t, r, http.MethodPost, "/webhook/notifications",
		`{"title":"T","message":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, h.Snapshot())
}

func TestList_EmptyIsArray(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestList_MostRecentFirst(t *testing.T) {
	t.Parallel()
	r, h := newTestRouter(t)

	for _, title := range []string{"first", "second", "third"} {
		_, err := h.Submit(hub.Submission{Title: title, Message: "m"})
		require.NoError(t, err)
	}

	rec := do(t, r, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]notification.Notification](t, rec)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)
}

func TestMarkRead(t *testing.T) {
	t.Parallel()
	r, h := newTestRouter(t)

	n, err := h.Submit(hub.Submission{Title: "T", Message: "M"})
	require.NoError(t, err)

	rec := do(t, r, http.MethodPut, "/notifications/"+n.ID+"/read", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[notification.Notification](t, rec)
	assert.Equal(t, n.ID, got.ID)
	assert.True(t, got.Read)
	assert.True(t, h.Snapshot()[0].Read)

	// Marking again still succeeds.
	rec = do(t, r, http.MethodPut, "/notifications/"+n.ID+"/read", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarkRead_NotFound(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/notifications/nope/read", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Notification not found", decode[errorResponse](t, rec).Error)
}

func TestGet(t *testing.T) {
	t.Parallel()
	r, h := newTestRouter(t)

	n, err := h.Submit(hub.Submission{Title: "T", Message: "M"})
	require.NoError(t, err)

	rec := do(t, r, http.MethodGet, "/notifications/"+n.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, h.Snapshot()[0], decode[notification.Notification](t, rec))
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/notifications/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Notification not found", decode[errorResponse](t, rec).Error)
}

func TestReset(t *testing.T) {
	t.Parallel()
	r, h := newTestRouter(t)

	_, err := h.Submit(hub.Submission{Title: "T", Message: "M"})
	require.NoError(t, err)

	rec := do(t, r, http.MethodDelete, "/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"All notifications cleared"}`, rec.Body.String())
	assert.Empty(t, h.Snapshot())
}

func TestHealthAndStats(t *testing.T) {
	t.Parallel()
	r, h := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"test"}`, rec.Body.String())

	_, err := h.Submit(hub.Submission{Title: "T", Message: "M"})
	require.NoError(t, err)

	rec = do(t, r, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[hub.Stats](t, rec)
	assert.Equal(t, 1, stats.Stored)
	assert.Equal(t, 10, stats.Capacity)
}

type fakeJournal struct {
	entries []journal.Entry
	err     error
	limit   int
}

func (f *fakeJournal) Recent(limit int) ([]journal.Entry, error) {
	f.limit = limit
	return f.entries, f.err
}

func TestJournal_Disabled(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/journal", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournal_ListsEntries(t *testing.T) {
	t.Parallel()
	fj := &fakeJournal{entries: []journal.Entry{
		{ID: 2, Kind: "updated", NotificationID: "1", Payload: json.RawMessage(`{"type":"updated"}`)},
		{ID: 1, Kind: "created", NotificationID: "1", Payload: json.RawMessage(`{"type":"created"}`)},
	}}
	r, _ := newTestRouter(t, func(d *Deps) { d.Journal = fj })

	rec := do(t, r, http.MethodGet, "/journal?limit=5000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxJournalLimit, fj.limit)

	entries := decode[[]journal.Entry](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "updated", entries[0].Kind)
}

func TestJournal_BadLimit(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, func(d *Deps) { d.Journal = &fakeJournal{} })

	rec := do(t, r, http.MethodGet, "/journal?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJournal_Error(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t, func(d *Deps) { d.Journal = &fakeJournal{err: errors.New("disk gone")} })

	rec := do(t, r, http.MethodGet, "/journal", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMCPMount(t *testing.T) {
	t.Parallel()
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r, _ := newTestRouter(t, func(d *Deps) { d.MCP = mcp })

	rec := do(t, r, http.MethodPost, "/mcp", `{}`)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
