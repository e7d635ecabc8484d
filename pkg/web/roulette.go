package web

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/warmans/demonlist/pkg/roulette"
	"github.com/warmans/demonlist/pkg/session"
)

const maxImportBytes = 1 << 20

type rouletteData struct {
	Started   bool
	Seed      uint64
	Completed bool
	Current   *roulette.Pick
	Required  float64
	Played    []roulette.Played
	Remaining []roulette.Pick
	Message   string
}

func (s *Server) handleRoulette(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)

	data := rouletteData{Message: r.URL.Query().Get("error")}
	_ = s.sessions.OpenForReading(sid, func(sess session.Session) error {
		g := sess.Roulette
		if g == nil {
			return nil
		}
		data.Started = true
		data.Seed = g.Seed
		data.Completed = g.Completed()
		data.Played = g.Played()
		if cur, ok := g.Current(); ok {
			data.Current = &cur
			data.Required = g.Required()
		} else {
			data.Remaining = g.Remaining()
		}
		return nil
	})
	s.render(w, r, http.StatusOK, mustPage("roulette"), data)
}

func (s *Server) handleRouletteStart(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}
	opts := roulette.Options{
		Seed:          rand.Uint64(),
		IncludeLegacy: r.PostForm.Get("legacy") != "",
	}
	if raw := strings.TrimSpace(r.PostForm.Get("seed")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.redirectRoulette(w, r, "Seed must be a positive number.")
			return
		}
		opts.Seed = seed
	}
	if raw := strings.TrimSpace(r.PostForm.Get("max")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.redirectRoulette(w, r, "Level count must be a number.")
			return
		}
		opts.Max = n
	}

	entries, err := s.src.Fetch(r.Context())
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}
	game, err := roulette.New(entries, opts)
	if err != nil {
		s.redirectRoulette(w, r, "No levels available for a roulette.")
		return
	}
	_ = s.sessions.OpenForWriting(sid, func(sess *session.Session) error {
		sess.Roulette = game
		return nil
	})
	s.redirectRoulette(w, r, "")
}

func (s *Server) handleRouletteSubmit(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}
	percent, err := strconv.ParseFloat(strings.TrimSpace(r.PostForm.Get("percent")), 64)
	if err != nil {
		s.redirectRoulette(w, r, "Percent must be a number.")
		return
	}
	message := ""
	_ = s.sessions.OpenForWriting(sid, func(sess *session.Session) error {
		if sess.Roulette == nil {
			message = "Start a roulette first."
			return nil
		}
		if err := sess.Roulette.Submit(percent); err != nil {
			message = rouletteMessage(err)
		}
		return nil
	})
	s.redirectRoulette(w, r, message)
}

func (s *Server) handleRouletteGiveUp(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)
	_ = s.sessions.OpenForWriting(sid, func(sess *session.Session) error {
		if sess.Roulette != nil {
			sess.Roulette.GiveUp()
		}
		return nil
	})
	s.redirectRoulette(w, r, "")
}

func (s *Server) handleRouletteExport(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)

	buff := &bytes.Buffer{}
	found := false
	err := s.sessions.OpenForReading(sid, func(sess session.Session) error {
		if sess.Roulette == nil {
			return nil
		}
		found = true
		return sess.Roulette.Export(buff)
	})
	if err != nil {
		s.logger.Error("Failed to export roulette", slog.String("err", err.Error()))
		s.renderError(w, r, http.StatusInternalServerError, "Failed to export the roulette.")
		return
	}
	if !found {
		s.renderError(w, r, http.StatusNotFound, "There is no roulette to export.")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="roulette.json"`)
	_, _ = buff.WriteTo(w)
}

func (s *Server) handleRouletteImport(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)

	var src io.Reader
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		src = io.LimitReader(file, maxImportBytes)
	} else {
		src = strings.NewReader(r.FormValue("data"))
	}
	game, err := roulette.Import(src)
	if err != nil {
		s.logger.Warn("Rejected roulette import", slog.String("err", err.Error()))
		s.redirectRoulette(w, r, "That roulette could not be imported.")
		return
	}
	_ = s.sessions.OpenForWriting(sid, func(sess *session.Session) error {
		sess.Roulette = game
		return nil
	})
	s.redirectRoulette(w, r, "")
}

func (s *Server) redirectRoulette(w http.ResponseWriter, r *http.Request, message string) {
	target := mustPage("roulette").Path
	if message != "" {
		target = fmt.Sprintf("%s?error=%s", target, url.QueryEscape(message))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func rouletteMessage(err error) string {
	switch {
	case errors.Is(err, roulette.ErrFinished):
		return "This roulette is already finished."
	case errors.Is(err, roulette.ErrInvalidPercent):
		return strings.TrimPrefix(err.Error(), roulette.ErrInvalidPercent.Error()+": ")
	default:
		return err.Error()
	}
}
