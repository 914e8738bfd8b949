package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/btouchard/beacon/internal/bus"
	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/notification"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
	wsWriteTimeout    = 10 * time.Second
	wsPongWait        = 60 * time.Second
	wsPingPeriod      = wsPongWait * 9 / 10
	wsMaxMessageBytes = 4096
)

// Client → server message types.
const (
	msgMarkRead = "mark_read"
	msgResync   = "resync"
)

type clientMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// replyMessage reports a failed client request on the stream.
type replyMessage struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Request string `json:"request,omitempty"`
	ID      string `json:"id,omitempty"`
}

func newReply(req clientMessage, msg string) replyMessage {
	return replyMessage{Type: "error", Error: msg, Request: req.Type, ID: req.ID}
}

// handleWS attaches a live subscriber and streams hub events as JSON text
// frames. The first frame is always a full snapshot.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !originAllowed(r, s.deps.AllowedOrigins) {
		writeError(w, http.StatusForbidden, "Origin not allowed")
		return
	}

	sub, err := s.deps.Hub.Connect()
	if err != nil {
		if errors.Is(err, bus.ErrTooManySubscribers) {
			writeError(w, http.StatusServiceUnavailable, "Too many subscribers")
			return
		}
		slog.Error("failed to attach subscriber", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to attach subscriber")
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, s.deps.AllowedOrigins)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		slog.Debug("websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		sub.Close()
		return
	}

	newWSStream(s.deps.Hub, sub, conn, s.deps.WriteTimeout).serve()
}

// wsStream owns one WebSocket connection. The write loop is the only
// goroutine writing to conn; the read loop hands replies over a channel.
type wsStream struct {
	hub          *hub.Hub
	sub          *hub.Subscriber
	conn         *websocket.Conn
	writeTimeout time.Duration

	replies  chan replyMessage
	done     chan struct{}
	stopOnce sync.Once
}

func newWSStream(h *hub.Hub, sub *hub.Subscriber, conn *websocket.Conn, writeTimeout time.Duration) *wsStream {
	if writeTimeout <= 0 {
		writeTimeout = wsWriteTimeout
	}
	return &wsStream{
		hub:          h,
		sub:          sub,
		conn:         conn,
		writeTimeout: writeTimeout,
		replies:      make(chan replyMessage, 8),
		done:         make(chan struct{}),
	}
}

func (st *wsStream) stop() {
	st.stopOnce.Do(func() { close(st.done) })
}

func (st *wsStream) serve() {
	defer st.conn.Close()
	defer st.sub.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer st.stop()
		st.writeLoop()
		// Unblock a reader waiting on a peer that went quiet.
		_ = st.conn.Close()
	}()

	st.readLoop()
	st.stop()
	wg.Wait()
}

func (st *wsStream) writeLoop() {
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	var seenDropped int64
	for {
		select {
		case ev, ok := <-st.sub.Events():
			if !ok {
				st.writeClose(websocket.CloseGoingAway, "server shutting down")
				return
			}
			if err := st.write(ev); err != nil {
				slog.Debug("websocket write failed", "subscriber_id", st.sub.ID(), "error", err)
				return
			}
			// A lagging client lost events; queue a fresh snapshot so it converges.
			if d := st.sub.Dropped(); d > seenDropped {
				seenDropped = d
				if ev.Kind != hub.KindFullSnapshot {
					slog.Warn("subscriber lagging, resyncing", "subscriber_id", st.sub.ID(), "dropped", d)
					st.hub.Resync(st.sub)
				}
			}
		case reply := <-st.replies:
			if err := st.write(reply); err != nil {
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(st.writeTimeout)
			if err := st.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-st.done:
			st.writeClose(websocket.CloseNormalClosure, "")
			return
		}
	}
}

func (st *wsStream) write(payload any) error {
	if err := st.conn.SetWriteDeadline(time.Now().Add(st.writeTimeout)); err != nil {
		return err
	}
	return st.conn.WriteJSON(payload)
}

func (st *wsStream) writeClose(code int, reason string) {
	deadline := time.Now().Add(st.writeTimeout)
	_ = st.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

func (st *wsStream) readLoop() {
	st.conn.SetReadLimit(wsMaxMessageBytes)
	_ = st.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	st.conn.SetPongHandler(func(string) error {
		return st.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := st.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read failed", "subscriber_id", st.sub.ID(), "error", err)
			}
			return
		}
		_ = st.conn.SetReadDeadline(time.Now().Add(wsPongWait))

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			st.reply(replyMessage{Type: "error", Error: "invalid message"})
			continue
		}
		st.handle(msg)
	}
}

func (st *wsStream) handle(msg clientMessage) {
	switch msg.Type {
	case msgMarkRead:
		if msg.ID == "" {
			st.reply(newReply(msg, "id is required"))
			return
		}
		if _, err := st.hub.MarkRead(msg.ID); err != nil {
			if errors.Is(err, notification.ErrNotFound) {
				st.reply(newReply(msg, "Notification not found"))
				return
			}
			slog.Error("failed to mark notification as read", "notification_id", msg.ID, "error", err)
			st.reply(newReply(msg, "Failed to update notification"))
		}
	case msgResync:
		st.hub.Resync(st.sub)
	default:
		st.reply(newReply(msg, "unknown message type"))
	}
}

// reply queues a message for the write loop, dropping it if the loop is
// gone or backed up.
func (st *wsStream) reply(m replyMessage) {
	select {
	case st.replies <- m:
	case <-st.done:
	default:
		slog.Debug("dropping websocket reply", "subscriber_id", st.sub.ID())
	}
}
