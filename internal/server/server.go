package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/expedanalysis/internal/auth"
	"github.com/TobiSchelling/expedanalysis/internal/database"
	"github.com/TobiSchelling/expedanalysis/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// recentInferenceLimit is how many past inferences the infer page lists.
const recentInferenceLimit = 10

// InferenceHistory lists logged inferences. *database.DB implements it.
type InferenceHistory interface {
	RecentInferences(company string, limit int) ([]database.InferenceRecord, error)
}

// Options wires the server's collaborators. Pipeline and Auth are
// required; Limiter and History are optional.
type Options struct {
	Pipeline *pipeline.Pipeline
	Auth     *auth.Manager
	Limiter  *auth.Limiter
	History  InferenceHistory
}

// Server is the HTTP dashboard.
type Server struct {
	pipe    *pipeline.Pipeline
	auth    *auth.Manager
	limiter *auth.Limiter
	history InferenceHistory
	text    uiText
	pages   map[string]*template.Template
	mux     *http.ServeMux
}

// New creates a new Server.
func New(opts Options) (*Server, error) {
	if opts.Pipeline == nil || opts.Auth == nil {
		return nil, fmt.Errorf("server: pipeline and auth are required")
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = auth.NewLimiter(0)
	}

	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"percent": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"login.html", "dashboard.html", "infer.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{
		pipe:    opts.Pipeline,
		auth:    opts.Auth,
		limiter: limiter,
		history: opts.History,
		text:    textFor(opts.Pipeline.Variant().Language),
		pages:   pages,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	s.mux.HandleFunc("GET /login", s.handleLoginPage)
	s.mux.HandleFunc("POST /login", s.handleLogin)
	s.mux.HandleFunc("POST /logout", s.handleLogout)

	s.mux.Handle("GET /{$}", s.requireUser(http.HandlerFunc(s.handleDashboard)))
	s.mux.Handle("GET /infer", s.requireUser(http.HandlerFunc(s.handleInferPage)))
	s.mux.Handle("POST /infer", s.requireUser(http.HandlerFunc(s.handleInfer)))
	s.mux.Handle("GET /export.xlsx", s.requireUser(http.HandlerFunc(s.handleExport)))

	s.mux.Handle("GET /api/analysis", s.requireAPIUser(http.HandlerFunc(s.handleAPIAnalysis)))
	s.mux.Handle("POST /api/infer", s.requireAPIUser(http.HandlerFunc(s.handleAPIInfer)))
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data map[string]any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error().Str("template", name).Msg("template not found")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data["Text"] = s.text
	data["Variant"] = s.pipe.Variant()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("rendering template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(opts Options, port int) error {
	srv, err := New(opts)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Info().Msgf("Server listening on http://%s", addr)
	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return hs.ListenAndServe()
}
