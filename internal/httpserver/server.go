// internal/httpserver/server.go
//
// HTTP server wiring for the BALDA service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", POST /validate, GET /daily.
//   - Game endpoints: list, snapshot, summary, events and the live websocket
//     stream; starting, cancelling and resuming games needs an operator token.
//
// Notes:
//   - The websocket route sits outside the timeout group: a stream lives as
//     long as its game.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/runner"
	"github.com/robalobadob/balda/internal/store"
	"github.com/robalobadob/balda/internal/words"
)

// EventSource answers the per-game event history.
type EventSource interface {
	Events(ctx context.Context, gameID string) ([]events.Event, error)
}

// Deps are the collaborators the handlers use.
type Deps struct {
	Runner       *runner.Runner
	Store        store.Store
	Events       EventSource // optional
	Hub          *events.Hub // optional; no live stream without it
	Dict         *words.Dictionary
	JWTSecret    string
	ClientOrigin string
	DailySalt    string
}

// Server bundles router and dependencies.
type Server struct {
	r        *chi.Mux
	deps     Deps
	upgrader websocket.Upgrader
	now      func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(deps Deps) *Server {
	if deps.ClientOrigin == "" {
		deps.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{
		r:    chi.NewRouter(),
		deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // read-only stream
		},
		now: time.Now,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)         // add X-Request-ID
	s.r.Use(chimw.RealIP)            // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)         // recover from panics
	s.r.Use(cors(deps.ClientOrigin)) // credentials-friendly CORS

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"balda","endpoints":["/health","POST /validate","GET /daily","/games"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Post("/validate", s.handleValidate)
		s.mountDaily(r)
		s.mountGames(r)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	s.r.Get("/games/{id}/stream", s.handleStream)
	return s
}

// Start begins serving HTTP on addr until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// jsonError writes {"error": code} with status.
func jsonError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
