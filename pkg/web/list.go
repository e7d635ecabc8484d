package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/listview"
	"github.com/warmans/demonlist/pkg/session"
)

type listData struct {
	State      listview.State
	Guidelines bool
	Rows       []listview.Row
	Detail     *listview.Detail
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)

	guidelines := true
	_ = s.sessions.OpenForReading(sid, func(sess session.Session) error {
		guidelines = !sess.GuidelinesHidden
		return nil
	})

	view := listview.New(guidelines)
	entries, err := s.src.Fetch(r.Context())
	if err != nil {
		view.Failed(err)
		s.renderFetchError(w, r, view.Err())
		return
	}
	if err := view.Loaded(entries); err != nil {
		s.logger.Error("Invalid list state", slog.String("err", err.Error()))
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}

	data := listData{Guidelines: view.GuidelinesVisible()}
	if key := r.URL.Query().Get("level"); key != "" {
		if err := view.Select(key); err != nil {
			if errors.Is(err, content.ErrLevelNotFound) {
				s.renderError(w, r, http.StatusNotFound, "Unknown level.")
				return
			}
			s.logger.Error("Failed to select level", slog.String("err", err.Error()))
			s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
			return
		}
		detail, err := view.Detail()
		if err != nil {
			s.logger.Error("Failed to build level detail", slog.String("err", err.Error()))
			s.renderError(w, r, http.StatusInternalServerError, "Something went wrong.")
			return
		}
		data.Detail = detail
	} else {
		levels := make([]*content.Level, 0, len(entries))
		for _, e := range entries {
			if e.Level != nil && e.Err == nil {
				levels = append(levels, e.Level)
			}
		}
		data.Rows = view.Rows(s.resolver.ResolveAll(r.Context(), levels))
	}
	data.State = view.State()

	s.render(w, r, http.StatusOK, mustPage("list"), data)
}

func (s *Server) handleCloseGuidelines(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)
	_ = s.sessions.OpenForWriting(sid, func(sess *session.Session) error {
		sess.GuidelinesHidden = true
		return nil
	})
	redirectBack(w, r)
}
