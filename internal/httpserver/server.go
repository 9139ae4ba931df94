// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the Battleship backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access logging).
//   - Public endpoints: "/", "/health".
//   - Session endpoints under /api (see routes_game.go).
//   - Results endpoint: GET /api/stats (see routes_stats.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the session cookie works).
//   - Every /api response is an envelope: {"ok":true,...} or {"ok":false,"error":...}.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/session"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

// Options carries the transport settings taken from config.
type Options struct {
	ClientOrigin string
	CookieName   string
	Secret       []byte
	CookieTTL    time.Duration
	Secure       bool // Secure + SameSite=None cookies (production)
}

// Server bundles the router, the session manager and the results store.
type Server struct {
	r       *chi.Mux
	mgr     *session.Manager
	results store.Results
	opts    Options
}

// New constructs a Server, installs middleware, and registers routes.
// results may be nil, in which case /api/stats reports no games.
func New(mgr *session.Manager, results store.Results, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "battleship_sid"
	}
	if opts.CookieTTL == 0 {
		opts.CookieTTL = 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), mgr: mgr, results: results, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))         // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"battleship-go","endpoints":["/health","POST /api/new","GET /api/state","POST /api/place_ship","POST /api/fire","POST /api/restart","POST /api/new_game","GET /api/stats"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api", func(r chi.Router) {
		s.mountGame(r)
		s.mountStats(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests and http.Server).
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
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request once it completes.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		ev := log.Info()
		if ww.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ responses ----------------------------------

// okResponse is the success envelope; Result's fields are inlined.
type okResponse struct {
	OK bool `json:"ok"`
	session.Result
}

// errResponse is the failure envelope. State is present when the session
// exists, so clients can resync after a rejected intent.
type errResponse struct {
	OK    bool           `json:"ok"`
	Error string         `json:"error"`
	State *game.Snapshot `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeOK(w http.ResponseWriter, res session.Result) {
	writeJSON(w, http.StatusOK, okResponse{OK: true, Result: res})
}

// writeError maps err to a status code and writes the failure envelope.
// Internal failures are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, res session.Result) {
	status := statusFor(err)
	body := errResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("reqId", chimw.GetReqID(r.Context())).Msg("request failed")
		body.Error = "internal error"
	} else if res.ID != "" {
		body.State = &res.Snapshot
	}
	writeJSON(w, status, body)
}

// badRequest writes a 400 for malformed input that never reached a session.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errResponse{Error: msg})
}

// statusFor maps intent errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidPlacement),
		errors.Is(err, game.ErrOutOfSequence),
		errors.Is(err, game.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrAlreadyTargeted):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownSession):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// requestLogger returns the global logger tagged with the request id.
func requestLogger(r *http.Request) zerolog.Logger {
	return log.With().Str("reqId", chimw.GetReqID(r.Context())).Logger()
}
