package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/spacesedan/tweetsentiment/internal/auth"
	"github.com/spacesedan/tweetsentiment/internal/clients"
	"github.com/spacesedan/tweetsentiment/internal/models"
	"github.com/spacesedan/tweetsentiment/internal/monitoring"
	"github.com/spacesedan/tweetsentiment/internal/processing"
	"github.com/spacesedan/tweetsentiment/internal/sentiment"
)

const (
	SESSION_NAME    = "tweetsentiment"
	SESSION_MAX_AGE = 7 * 24 * time.Hour

	sessionKeyToken      = "token"
	sessionKeySecret     = "secret"
	sessionKeyScreenName = "screen_name"
)

// LoginFlow is the Sign in with Twitter exchange.
type LoginFlow interface {
	Begin(ctx context.Context) (string, error)
	Complete(ctx context.Context, r *http.Request) (auth.UserToken, error)
}

// UserClient acts on behalf of one signed-in user.
type UserClient interface {
	processing.TweetSource
	ScreenName(ctx context.Context) (string, error)
}

type UserClientFactory func(token, secret string) UserClient

type Handlers struct {
	analyzer   *processing.Analyzer
	login      LoginFlow
	userClient UserClientFactory
	health     *monitoring.Health
	sessions   sessions.Store
	templates  *template.Template
	maxResults int
}

var templateFuncs = template.FuncMap{
	"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"polarity": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 4, 64)
	},
}

type pageUser struct {
	ScreenName string
}

type indexPage struct {
	User       pageUser
	MaxResults int
}

type processingPage struct {
	User       pageUser
	Search     string
	SearchType string
	Number     string
}

type resultsPage struct {
	User     pageUser
	Report   *processing.Report
	Positive []sentiment.ScoreResult
	Neutral  []sentiment.ScoreResult
	Negative []sentiment.ScoreResult
}

type errorPage struct {
	User    pageUser
	Status  int
	Title   string
	Message string
}

type sessionUser struct {
	token      string
	secret     string
	screenName string
}

func (u sessionUser) signedIn() bool { return u.token != "" && u.secret != "" }

func (h *Handlers) currentUser(r *http.Request) sessionUser {
	session, err := h.sessions.Get(r, SESSION_NAME)
	if err != nil {
		return sessionUser{}
	}

	token, _ := session.Values[sessionKeyToken].(string)
	secret, _ := session.Values[sessionKeySecret].(string)
	screenName, _ := session.Values[sessionKeyScreenName].(string)
	return sessionUser{token: token, secret: secret, screenName: screenName}
}

func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	h.render(w, r, http.StatusOK, "index.html", indexPage{
		User:       pageUser{ScreenName: user.screenName},
		MaxResults: h.maxResults,
	})
}

// Process shows the waiting page, which re-submits the form to /sentiment.
func (h *Handlers) Process(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: %v", models.ErrInvalidSearch, err))
		return
	}

	user := h.currentUser(r)
	h.render(w, r, http.StatusOK, "processing.html", processingPage{
		User:       pageUser{ScreenName: user.screenName},
		Search:     r.Form.Get("search"),
		SearchType: r.Form.Get("search_type"),
		Number:     r.Form.Get("number"),
	})
}

func (h *Handlers) Sentiment(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchForm(r, h.maxResults)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	user := h.currentUser(r)
	analyzer := h.analyzer
	if user.signedIn() && h.userClient != nil {
		analyzer = analyzer.WithSource(h.userClient(user.token, user.secret))
	}

	report, err := analyzer.Analyze(r.Context(), req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "results.html", resultsPage{
		User:     pageUser{ScreenName: user.screenName},
		Report:   report,
		Positive: report.Result.Positive(),
		Neutral:  report.Result.Neutral(),
		Negative: report.Result.Negative(),
	})
}

func parseSearchForm(r *http.Request, maxResults int) (models.SearchRequest, error) {
	if err := r.ParseForm(); err != nil {
		return models.SearchRequest{}, fmt.Errorf("%w: %v", models.ErrInvalidSearch, err)
	}

	searchType, err := models.ParseSearchType(r.PostForm.Get("search_type"))
	if err != nil {
		return models.SearchRequest{}, err
	}

	number, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("number")))
	if err != nil {
		return models.SearchRequest{}, fmt.Errorf("%w: result number must be a whole number", models.ErrInvalidSearch)
	}

	req := models.SearchRequest{
		Search:     r.PostForm.Get("search"),
		SearchType: searchType,
		Count:      number,
	}
	if err := req.Validate(maxResults); err != nil {
		return models.SearchRequest{}, err
	}
	return req, nil
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.login.Begin(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Authorize is the sign-in callback. The user's access token and screen name
// are kept in the session cookie.
func (h *Handlers) Authorize(w http.ResponseWriter, r *http.Request) {
	token, err := h.login.Complete(r.Context(), r)
	if errors.Is(err, auth.ErrLoginDenied) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	screenName := ""
	if h.userClient != nil {
		screenName, err = h.userClient(token.Token, token.Secret).ScreenName(r.Context())
		if err != nil {
			slog.Warn("[Server] Failed to look up screen name",
				slog.String("error", err.Error()))
		}
	}

	// start from a fresh session after sign in
	session, err := h.sessions.New(r, SESSION_NAME)
	if err != nil && session == nil {
		h.renderError(w, r, fmt.Errorf("failed to create session: %w", err))
		return
	}
	session.Values[sessionKeyToken] = token.Token
	session.Values[sessionKeySecret] = token.Secret
	session.Values[sessionKeyScreenName] = screenName
	if err := session.Save(r, w); err != nil {
		h.renderError(w, r, fmt.Errorf("failed to save session: %w", err))
		return
	}

	slog.Info("[Server] User signed in", slog.String("screen_name", screenName))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(r, SESSION_NAME)
	if err != nil {
		session, err = h.sessions.New(r, SESSION_NAME)
		if session == nil {
			h.renderError(w, r, fmt.Errorf("failed to create session: %w", err))
			return
		}
	}

	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.renderError(w, r, fmt.Errorf("failed to clear session: %w", err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Health reports OK unless a monitored dependency is failing.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if unhealthy := h.health.Unhealthy(); len(unhealthy) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("DEGRADED: " + strings.Join(unhealthy, ", ")))
			return
		}
	}
	w.Write([]byte("OK"))
}

// statusForError maps failures to the status shown on the error page.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidSearch):
		return http.StatusBadRequest, "Invalid search"
	case errors.Is(err, auth.ErrTokenNotFound):
		return http.StatusBadRequest, "Sign in expired"
	case errors.Is(err, clients.ErrRateLimited):
		return http.StatusTooManyRequests, "Twitter rate limit reached"
	case errors.Is(err, clients.ErrUnauthorized):
		return http.StatusBadGateway, "Twitter rejected our credentials"
	case errors.Is(err, clients.ErrUpstream):
		return http.StatusBadGateway, "Twitter is unavailable"
	case errors.Is(err, sentiment.ErrScoringFailure):
		return http.StatusInternalServerError, "Sentiment scoring failed"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := statusForError(err)

	attrs := []any{
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	if status >= http.StatusInternalServerError {
		slog.Error("[Server] Request failed", attrs...)
	} else {
		slog.Warn("[Server] Request failed", attrs...)
	}

	message := "Please try again later."
	if status == http.StatusBadRequest {
		message = err.Error()
	}

	user := h.currentUser(r)
	h.render(w, r, status, "error.html", errorPage{
		User:    pageUser{ScreenName: user.screenName},
		Status:  status,
		Title:   title,
		Message: message,
	})
}

// render buffers the page; a template error becomes a plain 500.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("[Server] Failed to render template",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
