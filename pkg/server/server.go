package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/fixture"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/middleware"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// ShutdownTimeout bounds Run's graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Server is the live-preview server. It holds the current tree and keeps
// every connected client's document in step with it.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	metrics  *patch.Metrics
	registry *prometheus.Registry
	tracer   trace.Tracer
	onEvent  fixture.HandlerFunc
	upgrader websocket.Upgrader

	// mu serializes passes: it guards tree and sessions and is held while
	// a new tree is pushed to every session.
	mu       sync.Mutex
	tree     *vdom.VNode
	sessions map[*Session]struct{}
	nextID   uint64

	handler    http.Handler
	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer overrides the tracer named in the configuration.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithTree sets the tree mounted for clients before the first render.
func WithTree(tree *vdom.VNode) Option {
	return func(s *Server) {
		if tree != nil {
			s.tree = tree
		}
	}
}

// WithEventHandler receives the client events fired on fixture elements.
// The default logs them. fn may be called from several connections at once.
// No server or session lock is held while fn runs, so fn may call Render;
// the read loop of the connection that sent the event waits until fn
// returns.
func WithEventHandler(fn fixture.HandlerFunc) Option {
	return func(s *Server) {
		s.onEvent = fn
	}
}

// New returns a server for cfg. A nil cfg uses config.New().
func New(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Server{
		config:   cfg,
		logger:   slog.Default(),
		tracer:   otel.Tracer(cfg.Tracing.TracerName),
		tree:     vdom.Empty(),
		sessions: make(map[*Session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	if s.onEvent == nil {
		s.onEvent = s.logEvent
	}

	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.metrics = patch.NewMetrics(
			patch.WithNamespace(cfg.Metrics.Namespace),
			patch.WithRegistry(s.registry),
		)
	}
	s.handler = s.routes()
	return s
}

func (s *Server) logEvent(path, trigger string, ev dom.Event) {
	s.logger.Info("client event", "element", path, "trigger", trigger, "event", ev)
}

// Handler returns the HTTP routes:
//
//	GET  /ws       websocket mutation stream
//	POST /render   push a JSON or YAML fixture to every client
//	GET  /render   the current tree as HTML
//	GET  /healthz  liveness
//	GET  /metrics  Prometheus, when enabled
func (s *Server) Handler() http.Handler {
	return s.handler
}

// routes builds the router once; the request metrics register with the
// server's registry and cannot be registered twice.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.OpenTelemetry(middleware.WithTracer(s.tracer)))
	if s.registry != nil {
		r.Use(middleware.Prometheus(
			middleware.WithNamespace(s.config.Metrics.Namespace),
			middleware.WithRegistry(s.registry),
		))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.Post("/render", s.handleRender)
	r.Get("/render", s.handleTree)
	if s.registry != nil {
		r.Handle(s.config.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Registry returns the Prometheus registry, or nil when metrics are off.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Render makes tree the current tree and reconciles every connected
// client to it. It returns the number of clients updated. tree is never
// mounted itself; each client gets its own copy. A NoChange tree keeps the
// current one.
func (s *Server) Render(ctx context.Context, tree *vdom.VNode) (int, error) {
	if tree == nil {
		tree = vdom.Empty()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !tree.IsNoChange() {
		s.tree = tree
	}
	var errs []error
	for sess := range s.sessions {
		if err := sess.update(ctx, tree); err != nil {
			errs = append(errs, err)
		}
	}
	return len(s.sessions), errors.Join(errs...)
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// attach registers sess and mounts the current tree for it. Holding mu
// keeps a concurrent Render from slipping in between.
func (s *Server) attach(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := sess.mount(ctx, s.tree); err != nil {
		return err
	}
	s.sessions[sess] = struct{}{}
	s.metrics.ClientConnected()
	return nil
}

func (s *Server) detach(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess]; !ok {
		return
	}
	delete(s.sessions, sess)
	s.metrics.ClientDisconnected()
}

func (s *Server) newSessionID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

// Run serves on the configured address until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadTimeout(),
		ReadTimeout:       s.config.ReadTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address())
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes every client connection and stops the HTTP server.
// Websocket connections are hijacked, so http.Server.Shutdown alone would
// leave them open.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.shutdown()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
