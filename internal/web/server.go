package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"

	"github.com/conorfennell/wortbox/internal/domain"
	"github.com/conorfennell/wortbox/internal/quiz"
	"github.com/conorfennell/wortbox/internal/stats"
	"github.com/conorfennell/wortbox/internal/study"
)

//go:embed all:static
var staticFiles embed.FS

//go:embed all:templates
var templateFiles embed.FS

// Study is the set of operations the HTTP layer exposes.
type Study interface {
	NextCard(ctx context.Context) (domain.Card, error)
	SubmitResult(ctx context.Context, id int64, outcome domain.Outcome) (domain.Card, error)
	ResetCard(ctx context.Context, id int64) (domain.Card, error)
	Quiz(ctx context.Context, n int) ([]quiz.Question, error)
	Stats(ctx context.Context) (stats.Stats, error)
	Deck(ctx context.Context) (study.DeckSummary, error)
}

// Options configures the server.
type Options struct {
	AudioDir       string
	AllowedOrigins []string
	QuizSize       int
	// Health reports whether backing services are reachable. May be nil.
	Health func(ctx context.Context) error
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	study     Study
	log       *slog.Logger
	opts      Options
	router    chi.Router
	templates *template.Template
	validate  *validator.Validate
}

// NewServer creates and configures a new server.
func NewServer(st Study, log *slog.Logger, opts Options) (*Server, error) {
	tpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if opts.QuizSize <= 0 {
		opts.QuizSize = quiz.DefaultQuestions
	}

	s := &Server{
		study:     st,
		log:       log,
		opts:      opts,
		router:    chi.NewRouter(),
		templates: tpl,
		validate:  validator.New(),
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the middleware stack and routing for the server.
func (s *Server) routes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create sub-filesystem for static assets: %w", err)
	}

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	}).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Handle("/static/audio/*", http.StripPrefix("/static/audio/", http.FileServer(filesOnly{http.Dir(s.opts.AudioDir)})))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(filesOnly{http.FS(staticFS)})))

	r.Route("/api", func(r chi.Router) {
		r.Get("/card", s.handleGetCard)
		r.Delete("/card/{id}/progress", s.handleResetCard)
		r.Post("/result/{id}/{result}", s.handlePostResult)
		r.Get("/quiz", s.handleGetQuiz)
		r.Get("/stats", s.handleGetStats)
		r.Get("/deck", s.handleGetDeck)
	})
	return nil
}

// handleIndex renders the single-page study UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	deck, err := s.study.Deck(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", deck); err != nil {
		s.log.ErrorContext(r.Context(), "Error rendering index", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			s.log.ErrorContext(r.Context(), "Health check failed", "error", err)
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleGetCard returns the next card to study.
func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.study.NextCard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

type cardRequest struct {
	ID int64 `validate:"gt=0"`
}

type resultRequest struct {
	ID     int64  `validate:"gt=0"`
	Result string `validate:"required"`
}

// handlePostResult records the outcome of a review.
func (s *Server) handlePostResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	req := resultRequest{ID: id, Result: chi.URLParam(r, "result")}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	outcome, err := domain.ParseOutcome(req.Result)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	card, err := s.study.SubmitResult(r.Context(), req.ID, outcome)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Status: "ok", Card: card})
}

// handleResetCard puts a card back into box 1.
func (s *Server) handleResetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	card, err := s.study.ResetCard(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Status: "ok", Card: card})
}

type quizRequest struct {
	Limit int `validate:"min=1,max=50"`
}

// handleGetQuiz builds a multiple-choice quiz from learned cards.
func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	req := quizRequest{Limit: s.opts.QuizSize}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := parseDecimal(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a number"})
			return
		}
		req.Limit = int(limit)
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	questions, err := s.study.Quiz(r.Context(), req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Questions: questions})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.study.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.study.Deck(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// parseID reads and validates the {id} path parameter, answering 400 on
// failure.
func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseDecimal(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid card id"})
		return 0, false
	}
	req := cardRequest{ID: id}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid card id"})
		return 0, false
	}
	return req.ID, true
}

// parseDecimal accepts only plain base-10 digits; signs, prefixes and
// trailing characters are rejected.
func parseDecimal(s string) (int64, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(s, 10, 64)
}

// filesOnly hides directories so the file servers never list them.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
