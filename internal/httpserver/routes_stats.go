// apps/go-server/internal/httpserver/routes_stats.go
//
// Results endpoint, mounted under /api:
//   - GET /stats → totals over every finished game plus the most recent ones
//                  (?limit=, default 20, max 100)

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

const (
	defaultRecent = 20
	maxRecent     = 100
)

// statsRes is the body of GET /api/stats.
type statsRes struct {
	OK      bool           `json:"ok"`
	Summary store.Summary  `json:"summary"`
	Recent  []store.Result `json:"recent"`
}

// mountStats registers the results routes.
func (s *Server) mountStats(r chi.Router) {
	r.Get("/stats", s.handleStats)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecent
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(w, "invalid limit")
			return
		}
		limit = min(n, maxRecent)
	}

	res := statsRes{OK: true, Recent: []store.Result{}}
	if s.results == nil {
		writeJSON(w, http.StatusOK, res)
		return
	}

	logger := requestLogger(r)
	sum, err := s.results.Summary(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("results summary")
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "db_error"})
		return
	}
	recent, err := s.results.Recent(r.Context(), limit)
	if err != nil {
		logger.Error().Err(err).Msg("recent results")
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "db_error"})
		return
	}
	res.Summary = sum
	if recent != nil {
		res.Recent = recent
	}
	writeJSON(w, http.StatusOK, res)
}
