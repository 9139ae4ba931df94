// apps/go-server/internal/httpserver/routes_game.go
//
// HTTP routes for playing a session. Mounted under /api:
//   - POST /new        → create a session (sets the session cookie)
//   - GET  /state      → current snapshot (?sid=)
//   - POST /place_ship → place the next ship
//   - POST /fire       → fire at the computer's board; the computer replies
//   - POST /restart    → clear shots, keep ship placements
//   - POST /new_game   → fresh game under the same sid
//
// Requests that omit sid fall back to the session cookie.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/session"
)

// mountGame registers the session routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/new", s.handleNew)
	r.Get("/state", s.handleState)
	r.Post("/place_ship", s.handlePlaceShip)
	r.Post("/fire", s.handleFire)
	r.Post("/restart", s.handleRestart)
	r.Post("/new_game", s.handleNewGame)
}

// coordReq is {r, c}; pointers tell a missing key from zero.
type coordReq struct {
	R *int `json:"r"`
	C *int `json:"c"`
}

func (c *coordReq) coord() (board.Coord, bool) {
	if c == nil || c.R == nil || c.C == nil {
		return board.Coord{}, false
	}
	return board.Coord{Row: *c.R, Col: *c.C}, true
}

// sidReq is the body of restart and new_game.
type sidReq struct {
	SID string `json:"sid"`
}

type placeShipReq struct {
	SID      string    `json:"sid"`
	Start    *coordReq `json:"start"`
	Rotation int       `json:"rotation"`
	Length   int       `json:"length"` // optional; 0 means the next length
}

type fireReq struct {
	SID    string    `json:"sid"`
	Target *coordReq `json:"target"`
}

// resolveSID prefers an explicit id and falls back to the cookie.
func (s *Server) resolveSID(explicit string, r *http.Request) string {
	if explicit != "" {
		return explicit
	}
	return s.sidFromCookie(r)
}

// decode reads a JSON body into v. An empty body leaves v zero.
func decode(r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	return err == nil || errors.Is(err, io.EOF)
}

// handleNew creates a session and remembers it in the cookie.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	res, err := s.mgr.Create(r.Context())
	if err != nil {
		writeError(w, r, err, res)
		return
	}
	s.setSessionCookie(w, res.ID)
	writeOK(w, res)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sid := s.resolveSID(r.URL.Query().Get("sid"), r)
	if sid == "" {
		badRequest(w, "Missing sid")
		return
	}
	res, err := s.mgr.Fetch(r.Context(), sid)
	if err != nil {
		writeError(w, r, err, res)
		return
	}
	writeOK(w, res)
}

func (s *Server) handlePlaceShip(w http.ResponseWriter, r *http.Request) {
	var req placeShipReq
	if !decode(r, &req) {
		badRequest(w, "bad_json")
		return
	}
	sid := s.resolveSID(req.SID, r)
	if sid == "" {
		badRequest(w, "Missing sid")
		return
	}
	origin, ok := req.Start.coord()
	if !ok {
		badRequest(w, "Missing start coords")
		return
	}
	res, err := s.mgr.PlaceShip(r.Context(), sid, game.Placement{
		Origin:      origin,
		Orientation: board.Orientation(req.Rotation),
		Length:      req.Length,
	})
	if err != nil {
		writeError(w, r, err, res)
		return
	}
	writeOK(w, res)
}

func (s *Server) handleFire(w http.ResponseWriter, r *http.Request) {
	var req fireReq
	if !decode(r, &req) {
		badRequest(w, "bad_json")
		return
	}
	sid := s.resolveSID(req.SID, r)
	if sid == "" {
		badRequest(w, "Missing sid")
		return
	}
	target, ok := req.Target.coord()
	if !ok {
		badRequest(w, "Missing target coords")
		return
	}
	res, err := s.mgr.Fire(r.Context(), sid, target)
	if err != nil {
		writeError(w, r, err, res)
		return
	}
	writeOK(w, res)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.withSID(w, r, s.mgr.Restart)
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	s.withSID(w, r, s.mgr.NewGame)
}

// withSID runs an intent whose only input is the session id.
func (s *Server) withSID(w http.ResponseWriter, r *http.Request, intent func(context.Context, string) (session.Result, error)) {
	var req sidReq
	if !decode(r, &req) {
		badRequest(w, "bad_json")
		return
	}
	sid := s.resolveSID(req.SID, r)
	if sid == "" {
		badRequest(w, "Missing sid")
		return
	}
	res, err := intent(r.Context(), sid)
	if err != nil {
		writeError(w, r, err, res)
		return
	}
	writeOK(w, res)
}
