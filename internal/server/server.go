package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/spacesedan/tweetsentiment/config"
	"github.com/spacesedan/tweetsentiment/internal/monitoring"
	"github.com/spacesedan/tweetsentiment/internal/processing"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Dependencies are the collaborators the handlers call into.
type Dependencies struct {
	Analyzer   *processing.Analyzer
	Login      LoginFlow
	UserClient UserClientFactory
	Health     *monitoring.Health
	MaxResults int
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer wires the router, middleware and handlers.
func NewServer(cfg config.Config, deps Dependencies) (*Server, error) {
	templates, err := ParseTemplates()
	if err != nil {
		return nil, err
	}

	h := &Handlers{
		analyzer:   deps.Analyzer,
		login:      deps.Login,
		userClient: deps.UserClient,
		health:     deps.Health,
		sessions:   NewSessionStore(cfg),
		templates:  templates,
		maxResults: deps.MaxResults,
	}

	router := NewRouter(h, cfg.Server.WriteTimeout)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}, nil
}

func ParseTemplates() (*template.Template, error) {
	templates, err := template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

// NewSessionStore signs session cookies with the secret key and encrypts them
// with the encryption key.
func NewSessionStore(cfg config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Server.SecretKey), []byte(cfg.Server.EncryptionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(SESSION_MAX_AGE.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func NewRouter(h *Handlers, timeout time.Duration) *chi.Mux {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(timeout))

	router.Get("/", h.Index)
	router.Get("/process", h.Process)
	router.Post("/process", h.Process)
	router.Post("/sentiment", h.Sentiment)
	router.Get("/login", h.Login)
	router.Get("/authorize", h.Authorize)
	router.Post("/logout", h.Logout)
	router.Get("/health", h.Health)

	return router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
