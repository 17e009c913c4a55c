// Package rest exposes the postkeeper services over HTTP using a chi router.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/postkeeper/internal/logging"
	"github.com/dmitrijs2005/postkeeper/internal/server/auth"
	"github.com/dmitrijs2005/postkeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// multipartSlack is added to the upload limit when capping request bodies,
// to leave room for the multipart envelope and the text fields.
const multipartSlack = 1 << 20

// HTTPServer serves the REST API.
type HTTPServer struct {
	address         string
	logger          logging.Logger
	users           *services.UserService
	posts           *services.PostService
	codec           *auth.Codec
	maxUploadBytes  int64
	shutdownTimeout time.Duration
}

// NewHTTPServer wires the handlers to the given services.
func NewHTTPServer(a string, l logging.Logger, us *services.UserService, ps *services.PostService,
	codec *auth.Codec, maxUploadBytes int64, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         a,
		logger:          l.With("module", "http_server"),
		users:           us,
		posts:           ps,
		codec:           codec,
		maxUploadBytes:  maxUploadBytes,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", s.greeting)
	r.Get("/home", s.greeting)
	r.Get("/test", s.greeting)

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)

	r.Get("/post/all-posts", s.allPosts)
	r.Get("/post/{uuid}", s.getPost)
	r.Get("/post/{uuid}/image", s.getPostImage)

	r.Group(func(r chi.Router) {
		r.Use(s.authGate)

		r.Get("/user", s.profile)
		r.Post("/user/update", s.updateUser)

		r.Post("/secure/post/create", s.createPost)
		r.Get("/secure/post/my-posts", s.myPosts)
	})

	return r
}

// greeting answers the landing routes with a JSON string.
func (s *HTTPServer) greeting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, "hello from postkeeper")
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	// Request contexts are detached from ctx; Shutdown drains in-flight requests.
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
