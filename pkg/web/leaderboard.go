package web

import (
	"net/http"

	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/leaderboard"
	"github.com/warmans/demonlist/pkg/packs"
)

type leaderboardData struct {
	Rows     []leaderboard.Row
	Selected *leaderboard.Row
}

type packsData struct {
	Packs []packs.Pack
}

// standings loads the list and pack definitions and resolves both.
func (s *Server) standings(r *http.Request) ([]content.Entry, []packs.Pack, error) {
	entries, err := s.src.Fetch(r.Context())
	if err != nil {
		return nil, nil, err
	}
	defs, err := s.src.Packs(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return entries, packs.Resolve(defs, entries), nil
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, resolved, err := s.standings(r)
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}
	data := leaderboardData{Rows: leaderboard.Build(entries, resolved)}
	if user := r.URL.Query().Get("user"); user != "" {
		row, ok := leaderboard.Find(data.Rows, user)
		if !ok {
			s.renderError(w, r, http.StatusNotFound, "Unknown player.")
			return
		}
		data.Selected = &row
	} else if len(data.Rows) > 0 {
		data.Selected = &data.Rows[0]
	}
	s.render(w, r, http.StatusOK, mustPage("leaderboard"), data)
}

func (s *Server) handlePacks(w http.ResponseWriter, r *http.Request) {
	_, resolved, err := s.standings(r)
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, mustPage("packs"), packsData{Packs: resolved})
}
