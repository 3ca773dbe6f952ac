package debug

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lixenwraith/void-striker/event"
)

const (
	// MaxSessions caps concurrent event stream clients
	MaxSessions = 32

	sendBuffer   = 256
	writeTimeout = 2 * time.Second
)

// Message is the wire form of one dispatched event
type Message struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Seq     uint64    `json:"seq"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// Hello is the first frame a session receives
type Hello struct {
	Session string `json:"session"`
}

// NewMessage converts an event; payloads that cannot be encoded are sent as text
func NewMessage(ev event.Event) Message {
	msg := Message{
		ID:      ev.ID.String(),
		Name:    ev.Name,
		Seq:     ev.Seq,
		Time:    ev.Timestamp,
		Payload: ev.Payload,
	}
	if ev.Payload != nil {
		if _, err := json.Marshal(ev.Payload); err != nil {
			msg.Payload = fmt.Sprintf("%+v", ev.Payload)
		}
	}
	return msg
}

type session struct {
	id      uuid.UUID
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	once    sync.Once
}

func (s *session) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub streams dispatcher events to websocket sessions
//
// Architecture:
//   - One dispatcher tap encodes each event once and offers it to every session
//   - Publish never blocks the game loop: a session over its rate or with a full
//     buffer drops the message
//   - Each session owns a writer goroutine draining its channel and a reader that
//     detects disconnects
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	limit   rate.Limit
	burst   int
	origins []string
	upgrade websocket.Upgrader
	metrics *Metrics
	logger  zerolog.Logger

	d   *event.Dispatcher
	tap event.Subscription
}

// NewHub creates a hub; limit and burst bound each session's message rate
func NewHub(limit float64, burst int, origins []string, metrics *Metrics, logger zerolog.Logger) *Hub {
	h := &Hub{
		sessions: make(map[uuid.UUID]*session),
		limit:    rate.Limit(limit),
		burst:    burst,
		origins:  origins,
		metrics:  metrics,
		logger:   logger.With().Str("component", "debug.hub").Logger(),
	}
	h.upgrade = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowedOrigin(h.origins, origin) {
				return true
			}
			h.logger.Warn().Str("origin", origin).Msg("websocket origin rejected")
			return false
		},
	}
	return h
}

// Attach taps d; every dispatched event from then on is published
func (h *Hub) Attach(d *event.Dispatcher) {
	h.Detach()
	h.mu.Lock()
	h.d = d
	h.mu.Unlock()
	h.tap = d.Tap(h.Publish)
}

// Detach removes the tap
func (h *Hub) Detach() {
	h.mu.Lock()
	d := h.d
	h.d = nil
	h.mu.Unlock()
	if d != nil {
		d.Off(h.tap)
	}
}

// Publish offers ev to every session
func (h *Hub) Publish(ev event.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.sessions) == 0 {
		return
	}

	data, err := json.Marshal(NewMessage(ev))
	if err != nil {
		h.logger.Debug().Err(err).Str("event", ev.Name).Msg("encode event")
		return
	}
	for _, s := range h.sessions {
		if !s.limiter.Allow() {
			h.dropped()
			continue
		}
		select {
		case s.send <- data:
			if h.metrics != nil {
				h.metrics.wsMessages.Inc()
			}
		default:
			h.dropped()
		}
	}
}

func (h *Hub) dropped() {
	if h.metrics != nil {
		h.metrics.wsDropped.Inc()
	}
}

// SessionCount returns the number of open sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// ServeHTTP upgrades the request and runs the session until the peer disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.SessionCount() >= MaxSessions {
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrade.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Msg("websocket upgrade")
		return
	}

	s := &session{
		id:      uuid.New(),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(h.limit, h.burst),
	}
	hello, _ := json.Marshal(Hello{Session: s.id.String()})
	s.send <- hello

	h.register(s)
	go h.writeLoop(s)
	go h.readLoop(s)
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	h.sessions[s.id] = s
	n := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info().Str("session", s.id.String()).Int("sessions", n).Msg("stream session opened")
	if h.metrics != nil {
		h.metrics.wsConnections.Set(float64(n))
	}
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	delete(h.sessions, s.id)
	n := len(h.sessions)
	h.mu.Unlock()
	if !ok {
		return
	}

	s.close()
	h.logger.Info().Str("session", s.id.String()).Int("sessions", n).Msg("stream session closed")
	if h.metrics != nil {
		h.metrics.wsConnections.Set(float64(n))
	}
}

func (h *Hub) writeLoop(s *session) {
	defer s.conn.Close()
	for data := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.unregister(s)
			return
		}
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
}

// readLoop discards client frames; the stream is one-way
func (h *Hub) readLoop(s *session) {
	defer h.unregister(s)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close ends every session
func (h *Hub) Close() {
	h.Detach()
	h.mu.Lock()
	sessions := h.sessions
	h.sessions = make(map[uuid.UUID]*session)
	h.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
	if h.metrics != nil {
		h.metrics.wsConnections.Set(0)
	}
}

// allowedOrigin matches origin against patterns with at most one '*' each,
// the same form go-chi/cors accepts
func allowedOrigin(patterns []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, p := range patterns {
		p = strings.ToLower(p)
		if p == "*" || p == origin {
			return true
		}
		prefix, suffix, ok := strings.Cut(p, "*")
		if ok && len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
