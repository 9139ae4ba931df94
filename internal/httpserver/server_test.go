package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robalobadob/battleship/apps/go-server/internal/board"
	"github.com/robalobadob/battleship/apps/go-server/internal/game"
	"github.com/robalobadob/battleship/apps/go-server/internal/session"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

type apiRes struct {
	OK      bool           `json:"ok"`
	SID     string         `json:"sid"`
	Error   string         `json:"error"`
	Message string         `json:"message"`
	State   *game.Snapshot `json:"state"`
	Shots   *game.Exchange `json:"shots"`
}

type harness struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := store.NewMemoryStore()
	mgr, err := session.NewManager(session.Options{
		Store:   st,
		Results: st,
		Rand:    rand.New(rand.NewSource(11)),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	srv := New(mgr, st, Options{
		ClientOrigin: "http://localhost:5173",
		Secret:       []byte("test-secret"),
		CookieTTL:    time.Hour,
	})
	return &harness{t: t, srv: srv}
}

// do sends a request, replaying the session cookie once one has been set.
func (h *harness) do(method, path string, body any) (int, apiRes) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	rr := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rr, req)

	for _, c := range rr.Result().Cookies() {
		if c.Name == "battleship_sid" {
			h.cookie = c
		}
	}
	var out apiRes
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		h.t.Fatalf("%s %s: decode %q: %v", method, path, rr.Body.String(), err)
	}
	return rr.Code, out
}

func (h *harness) newSession() string {
	h.t.Helper()
	code, res := h.do(http.MethodPost, "/api/new", nil)
	if code != http.StatusOK || !res.OK || res.SID == "" {
		h.t.Fatalf("new: %d %+v", code, res)
	}
	return res.SID
}

func (h *harness) placeAll(sid string) {
	h.t.Helper()
	for i, length := range []int{3, 4, 5} {
		code, res := h.do(http.MethodPost, "/api/place_ship", map[string]any{
			"sid":      sid,
			"start":    map[string]int{"r": i * 2, "c": 0},
			"rotation": 0,
			"length":   length,
		})
		if code != http.StatusOK {
			h.t.Fatalf("place ship %d: %d %+v", i, code, res)
		}
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	code, res := h.do(http.MethodGet, "/health", nil)
	if code != http.StatusOK || !res.OK {
		t.Fatalf("health: %d %+v", code, res)
	}
}

func TestNewSession(t *testing.T) {
	h := newHarness(t)
	code, res := h.do(http.MethodPost, "/api/new", nil)
	if code != http.StatusOK || !res.OK {
		t.Fatalf("new: %d %+v", code, res)
	}
	if res.State == nil || res.State.Phase != game.PhasePlacing || res.State.NextShipLength != 3 {
		t.Fatalf("state = %+v", res.State)
	}
	if res.State.PlayerRemaining != 3 || res.State.CPURemaining != 3 {
		t.Fatalf("remaining = %d/%d", res.State.PlayerRemaining, res.State.CPURemaining)
	}
	if res.State.CPUShips != nil {
		t.Fatal("computer ships leaked")
	}
	if h.cookie == nil || !h.cookie.HttpOnly {
		t.Fatalf("session cookie = %+v", h.cookie)
	}
}

func TestStateUsesCookieWhenSidMissing(t *testing.T) {
	h := newHarness(t)
	sid := h.newSession()

	code, res := h.do(http.MethodGet, "/api/state", nil)
	if code != http.StatusOK || res.SID != sid {
		t.Fatalf("state via cookie: %d %+v", code, res)
	}

	h.cookie = nil
	code, res = h.do(http.MethodGet, "/api/state", nil)
	if code != http.StatusBadRequest || res.Error != "Missing sid" {
		t.Fatalf("state without sid: %d %+v", code, res)
	}
}

func TestTamperedCookieIgnored(t *testing.T) {
	h := newHarness(t)
	h.newSession()
	h.cookie.Value += "x"

	code, res := h.do(http.MethodGet, "/api/state", nil)
	if code != http.StatusBadRequest || res.OK {
		t.Fatalf("tampered cookie: %d %+v", code, res)
	}
}

func TestUnknownSession(t *testing.T) {
	h := newHarness(t)
	code, res := h.do(http.MethodGet, "/api/state?sid=missing", nil)
	if code != http.StatusNotFound || res.OK || res.State != nil {
		t.Fatalf("unknown: %d %+v", code, res)
	}
}

func TestPlaceShipErrors(t *testing.T) {
	h := newHarness(t)
	sid := h.newSession()

	cases := []struct {
		name string
		body map[string]any
		code int
	}{
		{"missing start", map[string]any{"sid": sid}, http.StatusBadRequest},
		{"missing col", map[string]any{"sid": sid, "start": map[string]int{"r": 0}}, http.StatusBadRequest},
		{"out of bounds", map[string]any{"sid": sid, "start": map[string]int{"r": 0, "c": 8}}, http.StatusBadRequest},
		{"bad rotation", map[string]any{"sid": sid, "start": map[string]int{"r": 0, "c": 0}, "rotation": 2}, http.StatusBadRequest},
		{"wrong length", map[string]any{"sid": sid, "start": map[string]int{"r": 0, "c": 0}, "length": 5}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, res := h.do(http.MethodPost, "/api/place_ship", tc.body)
			if code != tc.code || res.OK || res.Error == "" {
				t.Fatalf("got %d %+v", code, res)
			}
		})
	}

	// Rejected intents still report the unchanged state.
	_, res := h.do(http.MethodPost, "/api/place_ship", cases[2].body)
	if res.State == nil || len(res.State.PlayerShips) != 0 {
		t.Fatalf("state after rejection = %+v", res.State)
	}
}

func TestPlaceAndFire(t *testing.T) {
	h := newHarness(t)
	sid := h.newSession()

	code, res := h.do(http.MethodPost, "/api/fire", map[string]any{"sid": sid, "target": map[string]int{"r": 0, "c": 0}})
	if code != http.StatusBadRequest {
		t.Fatalf("fire while placing: %d %+v", code, res)
	}

	h.placeAll(sid)

	code, res = h.do(http.MethodGet, "/api/state?sid="+sid, nil)
	if code != http.StatusOK || res.State.Phase != game.PhasePlaying || res.State.Turn != game.SidePlayer {
		t.Fatalf("after placement: %d %+v", code, res.State)
	}

	target := map[string]any{"sid": sid, "target": map[string]int{"r": 9, "c": 9}}
	code, res = h.do(http.MethodPost, "/api/fire", target)
	if code != http.StatusOK || res.Shots == nil || res.Shots.CPU == nil {
		t.Fatalf("fire: %d %+v", code, res)
	}
	if got := res.State.PlayerShots[9][9]; got == board.Unknown {
		t.Fatalf("shot not recorded: %v", got)
	}

	code, res = h.do(http.MethodPost, "/api/fire", target)
	if code != http.StatusConflict || res.State == nil {
		t.Fatalf("repeat fire: %d %+v", code, res)
	}

	code, _ = h.do(http.MethodPost, "/api/fire", map[string]any{"sid": sid, "target": map[string]int{"r": 10, "c": 0}})
	if code != http.StatusBadRequest {
		t.Fatalf("off-board fire: %d", code)
	}

	code, _ = h.do(http.MethodPost, "/api/fire", map[string]any{"sid": sid})
	if code != http.StatusBadRequest {
		t.Fatalf("fire without target: %d", code)
	}
}

func TestFullGameRecordsStats(t *testing.T) {
	h := newHarness(t)
	sid := h.newSession()
	h.placeAll(sid)

	var last apiRes
	for i := 0; i < board.Size*board.Size; i++ {
		target := map[string]int{"r": i / board.Size, "c": i % board.Size}
		code, res := h.do(http.MethodPost, "/api/fire", map[string]any{"sid": sid, "target": target})
		if code != http.StatusOK {
			t.Fatalf("fire %v: %d %+v", target, code, res)
		}
		last = res
		if res.State.Phase == game.PhaseOver {
			break
		}
	}
	if last.State.Phase != game.PhaseOver || last.State.Winner == "" || last.State.CPUShips == nil {
		t.Fatalf("final state = %+v", last.State)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rr := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", rr.Code, rr.Body.String())
	}
	var stats statsRes
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Summary.Games != 1 || len(stats.Recent) != 1 || stats.Recent[0].SessionID != sid {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRestartAndNewGame(t *testing.T) {
	h := newHarness(t)
	sid := h.newSession()
	h.placeAll(sid)
	h.do(http.MethodPost, "/api/fire", map[string]any{"sid": sid, "target": map[string]int{"r": 5, "c": 5}})

	code, res := h.do(http.MethodPost, "/api/restart", map[string]string{"sid": sid})
	if code != http.StatusOK || res.State.Phase != game.PhasePlaying {
		t.Fatalf("restart: %d %+v", code, res)
	}
	if res.State.PlayerShots.Count(board.Unknown) != board.Size*board.Size {
		t.Fatal("restart kept shots")
	}

	// Cookie fallback for the body-less intent.
	code, res = h.do(http.MethodPost, "/api/new_game", nil)
	if code != http.StatusOK || res.SID != sid || res.State.Phase != game.PhasePlacing {
		t.Fatalf("new game: %d %+v", code, res)
	}
	if res.Message != "New game created. Place your ship of length 3." {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestStatsLimit(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/api/stats?limit=zero", nil)
	rr := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/fire", nil)
	rr := httptest.NewRecorder()
	h.srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: overlap", game.ErrInvalidPlacement), http.StatusBadRequest},
		{fmt.Errorf("%w: not your turn", game.ErrOutOfSequence), http.StatusBadRequest},
		{fmt.Errorf("%w: (10,0)", game.ErrInvalidTarget), http.StatusBadRequest},
		{fmt.Errorf("%w at (1,1)", game.ErrAlreadyTargeted), http.StatusConflict},
		{fmt.Errorf("%w: %q", session.ErrUnknownSession, "x"), http.StatusNotFound},
		{game.ErrInternal, http.StatusInternalServerError},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	h := newHarness(t)
	tok, _, err := h.srv.signSession("abc", time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sid, err := h.srv.parseSession(tok)
	if err != nil || sid != "abc" {
		t.Fatalf("parse = %q, %v", sid, err)
	}

	expired, _, _ := h.srv.signSession("abc", time.Now().Add(-2*time.Hour))
	if _, err := h.srv.parseSession(expired); err == nil {
		t.Fatal("expired token accepted")
	}
}
