// Package api exposes the hub over HTTP: a REST pull surface, a webhook for
// external senders and a WebSocket live stream.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/journal"
)

const defaultMaxBodyBytes = 64 << 10

// JournalReader lists recent journal entries.
type JournalReader interface {
	Recent(limit int) ([]journal.Entry, error)
}

// Deps holds the dependencies injected into the HTTP handlers.
type Deps struct {
	Hub     *hub.Hub
	Journal JournalReader // nil when the journal is disabled
	Version string

	AllowedOrigins []string
	MaxBodyBytes   int64
	WriteTimeout   time.Duration

	// MCP is mounted on /mcp when set.
	MCP http.Handler
}

type server struct {
	deps Deps
}

// NewRouter builds the chi router serving every beacon endpoint.
func NewRouter(deps Deps) chi.Router {
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = defaultMaxBodyBytes
	}
	if deps.WriteTimeout <= 0 {
		deps.WriteTimeout = wsWriteTimeout
	}
	s := &server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(corsOptions(deps.AllowedOrigins)))

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)

	r.Post("/webhook/notifications", s.handleWebhook)

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Delete("/", s.handleReset)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}/read", s.handleMarkRead)
	})

	r.Get("/journal", s.handleJournal)
	r.Get("/ws", s.handleWS)

	if deps.MCP != nil {
		r.Handle("/mcp", deps.MCP)
	}

	return r
}
