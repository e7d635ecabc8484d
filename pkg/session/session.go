package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warmans/demonlist/pkg/roulette"
	"github.com/warmans/demonlist/pkg/submit"
)

const (
	CookieName = "demonlist_session"
	DefaultTTL = 24 * time.Hour
)

// Session is the per-visitor state of the site.
type Session struct {
	ID               string
	GuidelinesHidden bool
	Attempts         submit.Attempts
	Form             submit.Form
	Sent             bool
	Result           *submit.Result
	Roulette         *roulette.Game

	seen time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{ttl: ttl, sessions: map[string]*Session{}, now: time.Now}
}

type Store struct {
	ttl      time.Duration
	lock     sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// ID returns the session id from the request cookie, issuing a new one when the cookie is missing
// or the session expired.
func (s *Store) ID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil && s.touch(c.Value) {
			return c.Value
		}
	}
	id := uuid.NewString()
	s.lock.Lock()
	s.sessions[id] = &Session{ID: id, seen: s.now()}
	s.lock.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// touch marks a live session as seen. Expired sessions are left for Prune.
func (s *Store) touch(id string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	sess, ok := s.sessions[id]
	if !ok || s.now().Sub(sess.seen) >= s.ttl {
		return false
	}
	sess.seen = s.now()
	return true
}

// OpenForReading passes a copy of the session to cb.
func (s *Store) OpenForReading(id string, cb func(sess Session) error) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return cb(Session{ID: id})
	}
	return cb(*sess)
}

// OpenForWriting serializes changes to a session. The session is created if it does not exist.
func (s *Store) OpenForWriting(id string, cb func(sess *Session) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id}
		s.sessions[id] = sess
	}
	sess.seen = s.now()
	return cb(sess)
}

func (s *Store) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.sessions)
}

// Prune removes sessions that have not been seen within the ttl.
func (s *Store) Prune() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.now().Sub(sess.seen) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes expired sessions every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}
