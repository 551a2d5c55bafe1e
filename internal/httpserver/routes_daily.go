// internal/httpserver/routes_daily.go
//
// GET /daily → today's seed word, the one every game started with
// seed "daily" uses (optionally ?date=YYYY-MM-DD and ?length=N).

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/balda/internal/daily"
)

type dailyRes struct {
	Date   string `json:"date"`
	Length int    `json:"length"`
	Word   string `json:"word"`
}

// mountDaily registers the /daily route.
func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily", s.handleDaily)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	date := s.now()
	if q := r.URL.Query().Get("date"); q != "" {
		d, err := time.Parse("2006-01-02", q)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "bad_date")
			return
		}
		date = d
	}
	length := 5
	if q := r.URL.Query().Get("length"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			jsonError(w, http.StatusBadRequest, "bad_length")
			return
		}
		length = n
	}
	word := daily.SeedWord(date, s.deps.DailySalt, s.deps.Dict.WordsOfLength(length))
	if word == "" {
		jsonError(w, http.StatusNotFound, "no_word")
		return
	}
	_ = json.NewEncoder(w).Encode(dailyRes{Date: daily.DateKey(date), Length: length, Word: word})
}
