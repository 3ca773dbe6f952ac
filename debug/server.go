// Package debug serves an optional HTTP inspection surface for a running game:
// health, prometheus metrics, the state document, event history, a PNG frame,
// high scores and a websocket stream of live events
package debug

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/event"
	"github.com/lixenwraith/void-striker/game"
	"github.com/lixenwraith/void-striker/render"
	"github.com/lixenwraith/void-striker/score"
	"github.com/lixenwraith/void-striker/state"
)

const (
	defaultHistoryLimit = 100
	defaultTopLimit     = 10
	maxTopLimit         = 100
)

// Source is the running game as seen by the server
type Source interface {
	View() game.View
	Store() *state.Store
	Dispatcher() *event.Dispatcher
}

// Scoreboard lists recorded runs
type Scoreboard interface {
	Top(ctx context.Context, n int) ([]score.Entry, error)
}

// Config wires a Server
type Config struct {
	Game        Source
	Scores      Scoreboard // optional
	Metrics     *Metrics   // optional; a fresh registry without game status otherwise
	Seed        uint64     // starfield seed for /snapshot.png
	CORSOrigins []string
	StreamRate  float64
	StreamBurst int
	Logger      zerolog.Logger
}

// Server is the debug HTTP server
type Server struct {
	cfg    Config
	router *chi.Mux
	hub    *Hub
	http   *http.Server
	logger zerolog.Logger
}

// NewServer builds the router and attaches the event stream to the game dispatcher
func NewServer(cfg Config) (*Server, error) {
	if cfg.Game == nil {
		return nil, errors.New("debug: game source is required")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(nil)
	}
	if cfg.StreamRate <= 0 {
		cfg.StreamRate = 30
	}
	if cfg.StreamBurst <= 0 {
		cfg.StreamBurst = 60
	}

	logger := cfg.Logger.With().Str("component", "debug").Logger()
	s := &Server{
		cfg:    cfg,
		hub:    NewHub(cfg.StreamRate, cfg.StreamBurst, cfg.CORSOrigins, cfg.Metrics, cfg.Logger),
		logger: logger,
	}
	s.hub.Attach(cfg.Game.Dispatcher())
	s.router = s.routes()
	return s, nil
}

// Handler returns the router; usable with httptest.NewServer
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the event stream hub
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/state", s.handleState)
	r.Get("/history", s.handleHistory)
	r.Get("/snapshot.png", s.handleSnapshot)
	r.Get("/scores", s.handleScores)
	r.Method(http.MethodGet, "/ws", s.hub)
	return r
}

// ListenAndServe serves on addr until Shutdown; returns nil after a clean shutdown
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln
func (s *Server) Serve(ln net.Listener) error {
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("debug server listening")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, closes stream sessions and detaches from the game
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.cfg.Metrics.requestLatency.WithLabelValues(route, strconv.Itoa(ww.Status())).Observe(elapsed.Seconds())
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"phase":    s.cfg.Game.Store().GetString(game.PathPhase, game.PhaseTitle),
		"version":  s.cfg.Game.Store().Version(),
		"sessions": s.hub.SessionCount(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Game.Store())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	events := s.cfg.Game.Dispatcher().History()
	if limit >= 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]Message, len(events))
	for i, ev := range events {
		out[i] = NewMessage(ev)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	v := s.cfg.Game.View()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.WriteSnapshot(w, s.cfg.Seed, &v); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot encode")
	}
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Scores == nil {
		writeError(w, http.StatusServiceUnavailable, score.ErrNotConfigured)
		return
	}
	n, err := queryInt(r, "n", defaultTopLimit)
	if err != nil || n < 1 || n > maxTopLimit {
		writeError(w, http.StatusBadRequest, errors.New("n must be 1.."+strconv.Itoa(maxTopLimit)))
		return
	}
	entries, err := s.cfg.Scores.Top(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []score.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
