package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/runner"
	"github.com/robalobadob/balda/internal/store"
)

// mountGames registers the /games routes.
func (s *Server) mountGames(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Get("/", s.handleListGames)
		r.With(s.requireOperator()).Post("/", s.handleStartGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGame)
			r.Get("/events", s.handleGameEvents)
			r.With(s.requireOperator()).Post("/cancel", s.handleCancelGame)
			r.With(s.requireOperator()).Post("/resume", s.handleResumeGame)
		})
	})
}

type startGameRes struct {
	GameID string `json:"gameId"`
}

type gameListItem struct {
	store.Summary
	Running bool `json:"running"`
}

type resumeReq struct {
	Players []runner.PlayerSpec `json:"players"`
	runner.Limits
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var spec runner.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_json")
		return
	}
	id, err := s.deps.Runner.Start(r.Context(), spec)
	if err != nil {
		s.runnerError(w, err)
		return
	}
	log.Info().Str(events.FieldGameID, id).Str("operator", Operator(r.Context())).Msg("game created")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(startGameRes{GameID: id})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list games")
		jsonError(w, http.StatusInternalServerError, "db_error")
		return
	}
	out := make([]gameListItem, len(list))
	for i, g := range list {
		out[i] = gameListItem{Summary: g, Running: s.deps.Runner.Running(g.ID)}
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleGetGame returns the snapshot, or the plain-text summary with ?format=text.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.runnerError(w, err)
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := st.WriteSummary(w); err != nil {
			log.Warn().Err(err).Str(events.FieldGameID, st.ID).Msg("write summary")
		}
		return
	}
	data, err := st.Marshal()
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "encode_failed")
		return
	}
	_, _ = w.Write(data)
}

func (s *Server) handleGameEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Events == nil {
		jsonError(w, http.StatusNotImplemented, "no_event_log")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.deps.Store.Get(r.Context(), id); err != nil {
		s.runnerError(w, err)
		return
	}
	evs, err := s.deps.Events.Events(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str(events.FieldGameID, id).Msg("load events")
		jsonError(w, http.StatusInternalServerError, "db_error")
		return
	}
	_ = json.NewEncoder(w).Encode(evs)
}

func (s *Server) handleCancelGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Runner.Cancel(id); err != nil {
		s.runnerError(w, err)
		return
	}
	log.Info().Str(events.FieldGameID, id).Str("operator", Operator(r.Context())).Msg("game cancelled")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (s *Server) handleResumeGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req resumeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if err := s.deps.Runner.Resume(r.Context(), id, req.Players, req.Limits); err != nil {
		s.runnerError(w, err)
		return
	}
	log.Info().Str(events.FieldGameID, id).Str("operator", Operator(r.Context())).Msg("game resumed")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(startGameRes{GameID: id})
}

// runnerError maps runner and store errors onto status codes.
func (s *Server) runnerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, runner.ErrBadRequest):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, runner.ErrRunning):
		jsonError(w, http.StatusConflict, "already_running")
	case errors.Is(err, runner.ErrNotRunning):
		jsonError(w, http.StatusConflict, "not_running")
	case errors.Is(err, runner.ErrFinished):
		jsonError(w, http.StatusConflict, "game_over")
	default:
		log.Error().Err(err).Msg("game request")
		jsonError(w, http.StatusInternalServerError, "internal_error")
	}
}
