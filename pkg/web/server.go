package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/warmans/demonlist/pkg/content"
	"github.com/warmans/demonlist/pkg/prefs"
	"github.com/warmans/demonlist/pkg/score"
	"github.com/warmans/demonlist/pkg/session"
	"github.com/warmans/demonlist/pkg/site"
	"github.com/warmans/demonlist/pkg/submit"
	"github.com/warmans/demonlist/pkg/thumbnail"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type Config struct {
	AssetsDir string
	Site      site.Config
}

func NewServer(
	logger *slog.Logger,
	cfg Config,
	src content.Source,
	resolver *thumbnail.Resolver,
	submitter *submit.Submitter,
	sessions *session.Store,
) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{
		logger:    logger,
		cfg:       cfg,
		src:       src,
		resolver:  resolver,
		submitter: submitter,
		sessions:  sessions,
		templates: tmpl,
	}, nil
}

type Server struct {
	logger    *slog.Logger
	cfg       Config
	src       content.Source
	resolver  *thumbnail.Resolver
	submitter *submit.Submitter
	sessions  *session.Store
	templates map[string]*template.Template
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc(mustPage("list").Path, s.handleList).Methods(http.MethodGet)
	r.HandleFunc(mustPage("leaderboard").Path, s.handleLeaderboard).Methods(http.MethodGet)
	r.HandleFunc(mustPage("roulette").Path, s.handleRoulette).Methods(http.MethodGet)
	r.HandleFunc(mustPage("packs").Path, s.handlePacks).Methods(http.MethodGet)
	r.HandleFunc(mustPage("submit").Path, s.handleSubmitForm).Methods(http.MethodGet)

	r.HandleFunc("/guidelines/close", s.handleCloseGuidelines).Methods(http.MethodPost)
	r.HandleFunc("/dark/toggle", s.handleToggleDark).Methods(http.MethodPost)
	r.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost)
	r.HandleFunc("/submit/reset", s.handleSubmitReset).Methods(http.MethodPost)
	r.HandleFunc("/roulette/start", s.handleRouletteStart).Methods(http.MethodPost)
	r.HandleFunc("/roulette/submit", s.handleRouletteSubmit).Methods(http.MethodPost)
	r.HandleFunc("/roulette/give-up", s.handleRouletteGiveUp).Methods(http.MethodPost)
	r.HandleFunc("/roulette/import", s.handleRouletteImport).Methods(http.MethodPost)
	r.HandleFunc("/roulette/export", s.handleRouletteExport).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/list", s.handleAPIList).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", s.handleAPILeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/packs", s.handleAPIPacks).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc(thumbnail.DefaultPath, s.handleDefaultThumbnail).Methods(http.MethodGet)
	if s.cfg.AssetsDir != "" {
		r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.AssetsDir)))).Methods(http.MethodGet)
	}
	static, _ := fs.Sub(staticFS, "static")
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static)))).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)

	return logRequests(s.logger, r)
}

type layoutData struct {
	Site      site.Config
	Page      Page
	Pages     []Page
	BodyClass string
	Data      any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page Page, data any) {
	tmpl, ok := s.templates[page.Template]
	if !ok {
		s.logger.Error("Unknown template", slog.String("template", page.Template))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	p := prefs.Load(prefs.NewCookieStore(w, r))

	buff := &bytes.Buffer{}
	if err := tmpl.ExecuteTemplate(buff, "layout", layoutData{
		Site:      s.cfg.Site,
		Page:      page,
		Pages:     Pages,
		BodyClass: p.BodyClass(),
		Data:      data,
	}); err != nil {
		s.logger.Error("Failed to render template", slog.String("template", page.Template), slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buff.WriteTo(w)
}

type errorData struct {
	Status  int
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, Page{Name: "error", Title: http.StatusText(status), Template: "error"}, errorData{Status: status, Message: message})
}

// renderFetchError is used when the level list cannot be loaded.
func (s *Server) renderFetchError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Failed to fetch content", slog.String("path", r.URL.Path), slog.String("err", err.Error()))
	s.renderError(w, r, http.StatusBadGateway, "The level list could not be loaded. Please try again later.")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("Page not found", slog.String("path", r.URL.Path))
	s.renderError(w, r, http.StatusNotFound, "There is nothing here.")
}

func (s *Server) handleToggleDark(w http.ResponseWriter, r *http.Request) {
	prefs.Load(prefs.NewCookieStore(w, r)).ToggleDark()
	redirectBack(w, r)
}

func (s *Server) handleDefaultThumbnail(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AssetsDir != "" {
		p := filepath.Join(s.cfg.AssetsDir, filepath.Base(thumbnail.DefaultPath))
		if _, err := os.Stat(p); err == nil {
			http.ServeFile(w, r, p)
			return
		}
	}
	img, err := thumbnail.PlaceholderPNG()
	if err != nil {
		s.logger.Error("Failed to render placeholder", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(img)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", slog.String("err", err.Error()))
	}
}

// redirectBack returns the visitor to the page they came from. Only local paths are followed.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
		if ref.Host == "" || ref.Host == r.Host {
			target = ref.Path
			if ref.RawQuery != "" {
				target += "?" + ref.RawQuery
			}
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func parseTemplates() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"percent": score.FormatPercent,
		"points": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
	}
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	names := []string{"error"}
	for _, p := range Pages {
		names = append(names, p.Template)
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}
