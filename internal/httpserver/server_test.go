package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/balda/internal/daily"
	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/game"
	"github.com/robalobadob/balda/internal/runner"
	"github.com/robalobadob/balda/internal/store"
	"github.com/robalobadob/balda/internal/turn"
	"github.com/robalobadob/balda/internal/words"
)

const (
	secret = "test-secret"
	team   = "LETTER: M | POS: 0;3 | WORD: TEAM | PATH: (0;0)->(0;1)->(0;2)->(0;3) | DEF: group"
)

type fixture struct {
	http   *httptest.Server
	runner *runner.Runner
	store  store.Store
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dict, err := words.New([]string{"TEA", "TEAM", "MEAT", "STEAM", "TEAMS", "AGENT", "RAGE", "DENT"}, words.DefaultMinLength)
	require.NoError(t, err)

	db, err := store.OpenDB(filepath.Join(t.TempDir(), "balda.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))
	st := store.NewSQLiteStore(db)
	evlog := store.NewEventLog(db)
	hub := events.NewHub()

	rn, err := runner.New(st, dict, runner.WithRecorder(events.Multi(evlog, hub)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rn.Shutdown(context.Background()) })

	srv := New(Deps{Runner: rn, Store: st, Events: evlog, Hub: hub, Dict: dict, JWTSecret: secret, DailySalt: "salt"})
	hs := httptest.NewServer(srv.Router())
	t.Cleanup(hs.Close)

	tok, err := SignOperatorToken(secret, "ops", time.Hour)
	require.NoError(t, err)
	return &fixture{http: hs, runner: rn, store: st, token: tok}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, f.http.URL+path, rd)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (f *fixture) start(t *testing.T, spec runner.Spec) string {
	t.Helper()
	resp, body := f.do(t, http.MethodPost, "/games", f.token, spec)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var res startGameRes
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotEmpty(t, res.GameID)
	return res.GameID
}

func TestDiagnostics(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"ok":true}`, string(body))
	require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))

	resp, body = f.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"service":"balda"`)

	resp, _ = f.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodOptions, "/games", "", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	agent := []string{".....", ".....", "AGENT", ".....", "....."}

	for name, tc := range map[string]struct {
		req  validateReq
		want validateRes
	}{
		"accepted": {
			req: validateReq{Board: agent, Used: []string{"AGENT"},
				Move: "Sure!\nLETTER: R | POS: 1;0 | WORD: RAGE | PATH: (1;0)->(2;0)->(2;1)->(2;2) | DEF: anger"},
			want: validateRes{Accepted: true, Score: 4, Word: "RAGE"},
		},
		"duplicate": {
			req: validateReq{Board: agent, Used: []string{"agent", "rage"},
				Move: "LETTER: R | POS: 1;0 | WORD: RAGE | PATH: (1;0)->(2;0)->(2;1)->(2;2) | DEF: anger"},
			want: validateRes{Word: "RAGE", Reason: "DUPLICATE_WORD"},
		},
		"malformed": {
			req:  validateReq{Board: agent, Move: "I would play RAGE"},
			want: validateRes{Reason: turn.ReasonMalformed, Field: "descriptor"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			resp, body := f.do(t, http.MethodPost, "/validate", "", tc.req)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			var got validateRes
			require.NoError(t, json.Unmarshal(body, &got))
			got.Message = ""
			require.Equal(t, tc.want, got)
		})
	}

	t.Run("bad board", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/validate", "", validateReq{Board: []string{"AB", "C"}, Move: "x"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDaily(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/daily?date=2026-05-17", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got dailyRes
	require.NoError(t, json.Unmarshal(body, &got))
	date := time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)
	require.Equal(t, dailyRes{Date: "2026-05-17", Length: 5, Word: daily.SeedWord(date, "salt", []string{"AGENT", "STEAM", "TEAMS"})}, got)

	resp, _ = f.do(t, http.MethodGet, "/daily?date=yesterday", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/daily?length=9", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOperatorAuth(t *testing.T) {
	f := newFixture(t)
	spec := runner.Spec{Rows: 1, Cols: 4, Seed: "tea", Players: []runner.PlayerSpec{{Name: "a", Script: []string{team}}}}

	resp, _ := f.do(t, http.MethodPost, "/games", "", spec)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/games", "garbage", spec)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := SignOperatorToken("other-secret", "ops", time.Hour)
	require.NoError(t, err)
	resp, _ = f.do(t, http.MethodPost, "/games", other, spec)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	viewer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "v", "role": "viewer"}).SignedString([]byte(secret))
	require.NoError(t, err)
	resp, _ = f.do(t, http.MethodPost, "/games", viewer, spec)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	expired, err := SignOperatorToken(secret, "ops", -time.Minute)
	require.NoError(t, err)
	resp, _ = f.do(t, http.MethodPost, "/games", expired, spec)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err = SignOperatorToken("", "ops", time.Hour)
	require.ErrorIs(t, err, ErrNoSecret)

	t.Run("no secret configured", func(t *testing.T) {
		open := New(Deps{Runner: f.runner, Store: f.store})
		req := httptest.NewRequest(http.MethodPost, "/games/x/cancel", nil)
		req.Header.Set("Authorization", "Bearer "+f.token)
		rec := httptest.NewRecorder()
		open.Router().ServeHTTP(rec, req)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestGameLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.start(t, runner.Spec{Rows: 1, Cols: 4, Seed: "tea", Players: []runner.PlayerSpec{{Name: "alice", Script: []string{team}}}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := f.runner.Wait(ctx, id)
	require.NoError(t, err)
	require.Equal(t, turn.BoardFull, res.Status.Reason)

	t.Run("list", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/games", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list []gameListItem
		require.NoError(t, json.Unmarshal(body, &list))
		require.Len(t, list, 1)
		require.Equal(t, id, list[0].ID)
		require.Equal(t, store.StatusOver, list[0].Status)
		require.Equal(t, "BOARD_FULL", list[0].EndReason)
		require.False(t, list[0].Running)
	})

	t.Run("snapshot", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/games/"+id, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		st, err := game.Unmarshal(body)
		require.NoError(t, err)
		require.Equal(t, []string{"TEAM"}, st.Board.Rows())
		require.Equal(t, map[string]int{"alice": 4}, st.Scores())
	})

	t.Run("summary", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/games/"+id+"?format=text", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
		require.Contains(t, string(body), "---WORDS---\nTEA (seed) 3\nTEAM (alice) 4 (group)\n")
		require.Contains(t, string(body), "---GAME OVER: BOARD_FULL---")
	})

	t.Run("events", func(t *testing.T) {
		resp, body := f.do(t, http.MethodGet, "/games/"+id+"/events", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var evs []events.Event
		require.NoError(t, json.Unmarshal(body, &evs))
		kinds := make([]events.Kind, len(evs))
		for i, e := range evs {
			kinds[i] = e.Kind
		}
		require.Equal(t, []events.Kind{events.MoveAccepted, events.RoundCompleted, events.GameOver}, kinds)
	})

	t.Run("operator actions on a finished game", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/games/"+id+"/cancel", f.token, nil)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		resp, _ = f.do(t, http.MethodPost, "/games/"+id+"/resume", f.token, resumeReq{
			Players: []runner.PlayerSpec{{Name: "alice", Script: []string{team}}},
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown game", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodGet, "/games/missing", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp, _ = f.do(t, http.MethodGet, "/games/missing/events", "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp, _ = f.do(t, http.MethodPost, "/games/missing/resume", f.token, resumeReq{})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad start request", func(t *testing.T) {
		resp, _ := f.do(t, http.MethodPost, "/games", f.token, runner.Spec{Rows: 3, Cols: 3})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStream(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"move": team})
	}))
	defer agent.Close()

	id := f.start(t, runner.Spec{Rows: 1, Cols: 4, Seed: "tea", Players: []runner.PlayerSpec{{Name: "alice", URL: agent.URL}}})

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/games/" + id + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	close(release)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var kinds []events.Kind
	for {
		var e events.Event
		if err := conn.ReadJSON(&e); err != nil {
			require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
			break
		}
		require.Equal(t, id, e.GameID)
		kinds = append(kinds, e.Kind)
	}
	require.Equal(t, []events.Kind{events.MoveAccepted, events.RoundCompleted, events.GameOver}, kinds)

	t.Run("finished game closes at once", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, _, err = conn.ReadMessage()
		require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.http.URL, "http")+"/games/missing/stream", nil)
		require.Error(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
