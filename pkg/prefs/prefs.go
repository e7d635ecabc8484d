package prefs

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const (
	DarkKey   = "dark"
	DarkClass = "dark"
)

// Store persists preference values as strings.
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// Preferences holds the settings for a single visitor. Changes are written to the store as they
// happen.
type Preferences struct {
	store Store
	dark  bool
}

// Load reads the preferences from the store. Missing or malformed values fall back to defaults.
func Load(store Store) *Preferences {
	p := &Preferences{store: store}
	if raw, ok := store.Get(DarkKey); ok {
		var dark bool
		if err := json.Unmarshal([]byte(raw), &dark); err == nil {
			p.dark = dark
		}
	}
	return p
}

func (p *Preferences) Dark() bool {
	return p.dark
}

func (p *Preferences) ToggleDark() bool {
	p.dark = !p.dark
	b, _ := json.Marshal(p.dark)
	p.store.Set(DarkKey, string(b))
	return p.dark
}

// BodyClass is the class applied to the page body.
func (p *Preferences) BodyClass() string {
	if p.dark {
		return DarkClass
	}
	return ""
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Set(key string, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

const cookiePrefix = "pref_"

var cookieMaxAge = 365 * 24 * time.Hour

// NewCookieStore reads values from the request and writes them back as cookies on the response.
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{w: w, r: r, written: map[string]string{}}
}

type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	written map[string]string
}

func (c *CookieStore) Get(key string) (string, bool) {
	if v, ok := c.written[key]; ok {
		return v, true
	}
	cookie, err := c.r.Cookie(cookiePrefix + key)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (c *CookieStore) Set(key string, value string) {
	c.written[key] = value
	http.SetCookie(c.w, &http.Cookie{
		Name:     cookiePrefix + key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
