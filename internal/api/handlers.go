package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/notification"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 1000
)

type webhookResponse struct {
	Success      bool                      `json:"success"`
	Notification notification.Notification `json:"notification"`
}

type resetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.deps.Version,
	})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Hub.Stats())
}

func (s *server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.deps.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	sub, err := decodeSubmission(body)
	if err != nil {
		slog.Debug("rejected webhook payload", "remote_addr", r.RemoteAddr, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.deps.Hub.Submit(sub)
	if err != nil {
		var ve *hub.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, "Title and message are required")
			return
		}
		slog.Error("failed to process notification", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process notification")
		return
	}

	writeJSON(w, http.StatusCreated, webhookResponse{Success: true, Notification: n})
}

// payloadError is returned to the sender verbatim.
type payloadError string

func (e payloadError) Error() string { return string(e) }

const (
	errInvalidJSON    payloadError = "Invalid JSON body"
	errInvalidPayload payloadError = "Invalid notification payload"
)

func decodeSubmission(body []byte) (hub.Submission, error) {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return hub.Submission{}, errInvalidJSON
	}
	if err := payloadSchema.Validate(inst); err != nil {
		slog.Debug("submission failed schema validation", "error", err)
		return hub.Submission{}, errInvalidPayload
	}

	var sub hub.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		return hub.Submission{}, errInvalidPayload
	}
	return sub, nil
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Hub.Snapshot())
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Hub.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Notification not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := s.deps.Hub.MarkRead(id)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Notification not found")
			return
		}
		slog.Error("failed to mark notification as read", "notification_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	writeJSON(w, http.StatusOK, n)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.deps.Hub.Reset()
	writeJSON(w, http.StatusOK, resetResponse{Success: true, Message: "All notifications cleared"})
}

func (s *server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeError(w, http.StatusNotFound, "Journal is disabled")
		return
	}

	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxJournalLimit)
	}

	entries, err := s.deps.Journal.Recent(limit)
	if err != nil {
		slog.Error("failed to read journal", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read journal")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
