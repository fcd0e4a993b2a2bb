// Package httpapi exposes registration, login and pest classification over
// HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vedant281104/AgriShield/internal/credentials"
	"github.com/vedant281104/AgriShield/internal/ensemble"
	"github.com/vedant281104/AgriShield/internal/logging"
	"github.com/vedant281104/AgriShield/internal/pest"
)

// CredentialStore is the part of credentials.Store the API needs.
type CredentialStore interface {
	Register(ctx context.Context, username, password string) (credentials.RegisterOutcome, error)
	Verify(ctx context.Context, username, password string) (credentials.VerifyOutcome, error)
}

// Classifier is the part of ensemble.Classifier the API needs.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (*ensemble.Result, error)
}

type Options struct {
	SecretKey       []byte
	TokenValidity   time.Duration
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

type Server struct {
	store      CredentialStore
	classifier Classifier
	catalog    *pest.Catalog
	logger     logging.Logger
	opts       Options
	router     *gin.Engine
}

func NewServer(store CredentialStore, classifier Classifier, catalog *pest.Catalog, logger logging.Logger, opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		store:      store,
		classifier: classifier,
		catalog:    catalog,
		logger:     logger.With("module", "http_server"),
		opts:       opts,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog())

	r.GET("/health", s.health)

	api := r.Group("/api/v1")
	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.GET("/labels", s.labels)
	api.POST("/classify", s.bearerAuth(), s.classify)

	s.router = r
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is cancelled, then drains
// in-flight requests for at most Options.ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := srv.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", l.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
