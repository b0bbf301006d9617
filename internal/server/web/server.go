// Package web is the HTTP transport: a gorilla/mux router, the session
// middleware, form handlers and the embedded views.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/services"
	"github.com/dmitrijs2005/scribblenest/internal/server/storage"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Services bundles what the handlers call into.
type Services struct {
	Users   *services.UserService
	Posts   *services.PostService
	Uploads *services.UploadService
}

type Server struct {
	address      string
	logger       logging.Logger
	users        *services.UserService
	posts        *services.PostService
	uploads      *services.UploadService
	store        repomanager.RepositoryManager
	flash        *sessions.CookieStore
	views        *template.Template
	uploadsDir   string
	tokenTTL     time.Duration
	maxUpload    int64
	storeTimeout time.Duration
	router       *mux.Router
}

// NewServer builds the server and its routes. uploadsDir is the local image
// directory served under /uploads/; leave it empty when images live
// elsewhere.
func NewServer(cfg *config.Config, logger logging.Logger, svc Services, store repomanager.RepositoryManager, uploadsDir string) (*Server, error) {
	views, err := parseViews()
	if err != nil {
		return nil, fmt.Errorf("parsing views: %w", err)
	}

	s := &Server{
		address:      cfg.HTTPAddr,
		logger:       logger.With("module", "http_server"),
		users:        svc.Users,
		posts:        svc.Posts,
		uploads:      svc.Uploads,
		store:        store,
		flash:        newFlashStore(cfg.SessionKey),
		views:        views,
		uploadsDir:   uploadsDir,
		tokenTTL:     cfg.TokenValidityDuration,
		maxUpload:    cfg.MaxUploadSize,
		storeTimeout: cfg.StoreTimeout,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.HandleFunc("/", s.index).Methods(http.MethodGet)
	r.HandleFunc("/login", s.loginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodGet)
	r.HandleFunc("/profile/upload", s.uploadForm).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	r.Handle("/profile", s.requireSession(s.profile)).Methods(http.MethodGet)
	r.Handle("/upload", s.requireSession(s.upload)).Methods(http.MethodPost)
	r.Handle("/post", s.requireSession(s.createPost)).Methods(http.MethodPost)
	r.Handle("/like/{id}", s.requireSession(s.like)).Methods(http.MethodGet)
	r.Handle("/edit/{id}", s.requireSession(s.editForm)).Methods(http.MethodGet)
	r.Handle("/update/{id}", s.requireSession(s.updatePost)).Methods(http.MethodPost)
	r.Handle("/delete/{id}", s.requireSession(s.deletePost)).Methods(http.MethodPost)

	if s.uploadsDir != "" {
		r.PathPrefix(storage.LocalURLPrefix).Handler(
			http.StripPrefix(storage.LocalURLPrefix, http.FileServer(http.Dir(s.uploadsDir))),
		).Methods(http.MethodGet)
	}

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on l until ctx is done, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			s.logger.Error(context.Background(), "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
