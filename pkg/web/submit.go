package web

import (
	"net/http"

	"github.com/warmans/demonlist/pkg/score"
	"github.com/warmans/demonlist/pkg/session"
	"github.com/warmans/demonlist/pkg/submit"
)

type levelOption struct {
	Key   string
	Label string
}

type submitData struct {
	Levels  []levelOption
	Form    submit.Form
	Sent    bool
	Failed  bool
	Message string
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)

	entries, err := s.src.Fetch(r.Context())
	if err != nil {
		s.renderFetchError(w, r, err)
		return
	}

	data := submitData{}
	for _, e := range entries {
		if e.Err != nil || e.Level == nil {
			continue
		}
		data.Levels = append(data.Levels, levelOption{
			Key:   e.Level.Key(),
			Label: score.RankLabel(e.Rank) + ". " + e.Level.Name,
		})
	}
	_ = s.sessions.OpenForReading(sid, func(sess session.Session) error {
		data.Form = sess.Form
		data.Sent = sess.Sent
		data.Message = sess.Attempts.Message
		if sess.Result != nil && sess.Result.Status == submit.StatusFailed {
			data.Failed = true
			data.Message = sess.Result.Message
		}
		return nil
	})
	s.render(w, r, http.StatusOK, mustPage("submit"), data)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}
	form := submit.FormFromValues(r.PostForm)

	var attempts submit.Attempts
	_ = s.sessions.OpenForReading(sid, func(sess session.Session) error {
		attempts = sess.Attempts
		return nil
	})

	// delivery happens outside the session lock as it waits on the webhook, so the attempt
	// count is applied to the stored session again rather than copied back
	res := s.submitter.Submit(r.Context(), &attempts, &form)

	_ = s.sessions.OpenForWriting(sid, func(sess *session.Session) error {
		switch res.Status {
		case submit.StatusInvalid:
			sess.Attempts.Fail()
			res.Message = sess.Attempts.Message
		case submit.StatusSent:
			sess.Attempts.Reset()
		}
		sess.Form = form
		sess.Result = &res
		sess.Sent = res.Status == submit.StatusSent
		return nil
	})
	http.Redirect(w, r, mustPage("submit").Path, http.StatusSeeOther)
}

func (s *Server) handleSubmitReset(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(w, r)
	_ = s.sessions.OpenForWriting(sid, func(sess *session.Session) error {
		sess.Sent = false
		sess.Result = nil
		return nil
	})
	http.Redirect(w, r, mustPage("submit").Path, http.StatusSeeOther)
}
