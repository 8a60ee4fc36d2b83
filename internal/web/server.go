package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"indigo/internal/config"
	"indigo/internal/domain"
	"indigo/internal/session"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Server is the browser-facing menu: server-rendered pages, form commands
// and the live refresh socket.
type Server struct {
	cfg        config.HTTPConfig
	cookieName string
	sessions   *session.Registry
	catalog    domain.CatalogReader
	logger     *zerolog.Logger
	server     *http.Server
	handler    http.Handler
}

func NewServer(cfg config.HTTPConfig, cookieName string, sessions *session.Registry, catalog domain.CatalogReader, logger *zerolog.Logger) *Server {
	srv := &Server{
		cfg:        cfg,
		cookieName: cookieName,
		sessions:   sessions,
		catalog:    catalog,
		logger:     logger,
	}

	mux := http.NewServeMux()
	srv.routes(mux)
	srv.handler = recoverMiddleware(logger, loggingMiddleware(logger, mux))

	srv.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

func (s *Server) routes(mux *http.ServeMux) {
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /api/v1/menu", s.handleMenuJSON)
	mux.HandleFunc("GET /admin/export.xlsx", s.handleExport)

	mux.HandleFunc("POST /admin/pin/open", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().OpenPinPad().Alert()
	}))
	mux.HandleFunc("POST /admin/pin/cancel", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().CancelPinPad().Alert()
	}))
	mux.HandleFunc("POST /admin/pin", s.command(s.handleSubmitPin))
	mux.HandleFunc("POST /admin/exit", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().ExitAdmin().Alert()
	}))

	mux.HandleFunc("POST /items/{id}/toggle", s.command(s.handleToggle))
	mux.HandleFunc("POST /items/{id}/edit", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().BeginEdit(r.PathValue("id")).Alert()
	}))
	mux.HandleFunc("POST /items/{id}/delete", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().MarkForDeletion(r.PathValue("id")).Alert()
	}))

	mux.HandleFunc("POST /edit/save", s.command(s.handleSaveEdit))
	mux.HandleFunc("POST /edit/cancel", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().CancelEdit().Alert()
	}))

	mux.HandleFunc("POST /categories/{key}/add", s.command(s.handleBeginAdd))
	mux.HandleFunc("POST /add/save", s.command(s.handleAddItem))
	mux.HandleFunc("POST /add/cancel", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().CancelAdd().Alert()
	}))

	mux.HandleFunc("POST /delete/confirm", s.command(s.handleConfirmDelete))
	mux.HandleFunc("POST /delete/cancel", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().CancelDelete().Alert()
	}))

	mux.HandleFunc("POST /assistant/open", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().OpenAssistant().Alert()
	}))
	mux.HandleFunc("POST /assistant/close", s.command(func(r *http.Request, sess *session.Session) string {
		return sess.Controller().CloseAssistant().Alert()
	}))
	mux.HandleFunc("POST /assistant/ask", s.command(s.handleAsk))
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP menu listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// session resolves the caller's view, issuing a cookie for a new one.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	var id string
	if c, err := r.Cookie(s.cookieName); err == nil {
		id = c.Value
	}

	sess, created, err := s.sessions.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, nil
}

// baseURL is the address the admin banner offers for copying.
func (s *Server) baseURL(r *http.Request) string {
	if s.cfg.PublicURL != "" {
		return s.cfg.PublicURL
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}
