package web

import (
	"log/slog"
	"net/http"

	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/leaderboard"
	"github.com/warmans/demonlist/pkg/score"
)

type apiError struct {
	Error string `json:"error"`
}

type apiLevel struct {
	Key              string           `json:"key"`
	Rank             *int             `json:"rank"`
	RankLabel        string           `json:"rankLabel"`
	Name             string           `json:"name"`
	Author           string           `json:"author,omitempty"`
	Verifier         string           `json:"verifier,omitempty"`
	Verification     string           `json:"verification,omitempty"`
	PercentToQualify float64          `json:"percentToQualify,omitempty"`
	Points           *float64         `json:"points,omitempty"`
	Records          []content.Record `json:"records,omitempty"`
	Error            string           `json:"error,omitempty"`
}

type apiLeaderboardRow struct {
	Position  int      `json:"position"`
	User      string   `json:"user"`
	Total     float64  `json:"total"`
	Verified  int      `json:"verified"`
	Completed int      `json:"completed"`
	Progress  int      `json:"progressed"`
	Packs     []string `json:"packs,omitempty"`
}

type apiPack struct {
	Name    string   `json:"name"`
	Colour  string   `json:"colour,omitempty"`
	Levels  []string `json:"levels"`
	Missing []string `json:"missing,omitempty"`
	Bonus   float64  `json:"bonus"`
}

func (s *Server) apiFetchFailed(w http.ResponseWriter, err error) {
	s.logger.Error("API failed to fetch content", slog.String("err", err.Error()))
	s.writeJSON(w, http.StatusBadGateway, apiError{Error: "content unavailable"})
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.src.Fetch(r.Context())
	if err != nil {
		s.apiFetchFailed(w, err)
		return
	}
	listLength := content.RankedCount(entries)
	out := make([]apiLevel, 0, len(entries))
	for _, e := range entries {
		if e.Level == nil {
			continue
		}
		lvl := apiLevel{
			Key:       e.Level.Key(),
			Rank:      e.Rank,
			RankLabel: score.RankLabel(e.Rank),
			Name:      e.Level.Name,
		}
		if e.Err != nil {
			lvl.Error = e.Err.Error()
			out = append(out, lvl)
			continue
		}
		lvl.Author = e.Level.Author
		lvl.Verifier = e.Level.Verifier
		lvl.Verification = e.Level.Verification
		lvl.PercentToQualify = e.Level.PercentToQualify
		lvl.Records = e.Level.Records
		if points, ok := score.LevelScore(e.Level, 100, listLength); ok {
			lvl.Points = &points
		}
		out = append(out, lvl)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPILeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, resolved, err := s.standings(r)
	if err != nil {
		s.apiFetchFailed(w, err)
		return
	}
	rows := leaderboard.Build(entries, resolved)
	out := make([]apiLeaderboardRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, apiLeaderboardRow{
			Position:  row.Position,
			User:      row.User,
			Total:     row.Total,
			Verified:  len(row.Verified),
			Completed: len(row.Completed),
			Progress:  len(row.Progressed),
			Packs:     row.Packs,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIPacks(w http.ResponseWriter, r *http.Request) {
	_, resolved, err := s.standings(r)
	if err != nil {
		s.apiFetchFailed(w, err)
		return
	}
	out := make([]apiPack, 0, len(resolved))
	for _, p := range resolved {
		levels := make([]string, 0, len(p.Levels))
		for _, l := range p.Levels {
			levels = append(levels, l.Key())
		}
		out = append(out, apiPack{Name: p.Name, Colour: p.Colour, Levels: levels, Missing: p.Missing, Bonus: p.Bonus})
	}
	s.writeJSON(w, http.StatusOK, out)
}
