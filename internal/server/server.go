// Package server is the reference CRUD backend: it answers the single action
// endpoint the form sessions talk to and persists records in a SQLStore.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/internal/store"
	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/formdef"
)

// Records is the persistence the server dispatches to.
type Records interface {
	Create(ctx context.Context, entity string, values map[string]any) (store.Record, error)
	Update(ctx context.Context, entity string, id int64, values map[string]any) (store.Record, error)
	Delete(ctx context.Context, entity string, id int64) error
	Get(ctx context.Context, entity string, id int64) (store.Record, error)
	List(ctx context.Context, entity string, where map[string]any) ([]store.Record, error)
}

var _ Records = (*store.SQLStore)(nil)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithForms registers the form definitions used to check incoming values.
func WithForms(forms *formdef.Store) Option {
	return func(s *Server) {
		s.forms = forms
	}
}

// WithRegistry overrides the Prometheus registry the metrics are registered on.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// Server routes HTTP requests to a Records implementation.
type Server struct {
	records  Records
	forms    *formdef.Store
	log      *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics
	router   chi.Router
}

// New builds a server over records.
func New(records Records, opts ...Option) (*Server, error) {
	if records == nil {
		return nil, errors.New("server: records are required")
	}
	s := &Server{
		records: records,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.forms == nil {
		s.forms = formdef.NewStore()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	m, err := newMetrics(s.registry)
	if err != nil {
		return nil, err
	}
	s.metrics = m
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID, s.logRequests, s.recoverPanics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Post("/"+crud.DefaultEndpoint, s.handleAction)
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
