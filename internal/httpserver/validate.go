package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/robalobadob/balda/internal/board"
	"github.com/robalobadob/balda/internal/move"
	"github.com/robalobadob/balda/internal/rules"
	"github.com/robalobadob/balda/internal/turn"
)

// validateReq/Res payloads for POST /validate.
type validateReq struct {
	Board []string `json:"board"` // one string per row, '.' for empty
	Used  []string `json:"used"`  // words already played, seed included
	Move  string   `json:"move"`  // descriptor line (surrounding chatter allowed)
}

type validateRes struct {
	Accepted bool   `json:"accepted"`
	Score    int    `json:"score,omitempty"`
	Word     string `json:"word,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
	Field    string `json:"field,omitempty"` // parse failures only
}

// usedWords is a History backed by the request's word list.
type usedWords map[string]struct{}

func (u usedWords) Used(w string) bool {
	_, ok := u[strings.ToUpper(w)]
	return ok
}

// handleValidate checks one move against a board without touching any game.
// Rejections are answers, not errors: they come back with 200.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_json")
		return
	}
	b, err := board.FromRows(req.Board)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "bad_board: "+err.Error())
		return
	}
	used := make(usedWords, len(req.Used))
	for _, u := range req.Used {
		used[strings.ToUpper(strings.TrimSpace(u))] = struct{}{}
	}

	var res validateRes
	m, err := move.Parse(req.Move)
	var pe *move.ParseError
	switch {
	case errors.As(err, &pe):
		res = validateRes{Reason: turn.ReasonMalformed, Message: pe.Reason, Field: pe.Field}
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "parse_failed")
		return
	default:
		acc, err := s.deps.Runner.Validator().Validate(m, b, used)
		var rej *rules.Rejection
		switch {
		case errors.As(err, &rej):
			res = validateRes{Word: m.Word, Reason: string(rej.Reason), Message: rej.Message}
		case err != nil:
			jsonError(w, http.StatusInternalServerError, "validate_failed")
			return
		default:
			res = validateRes{Accepted: true, Score: acc.Score, Word: acc.Move.Word}
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}
