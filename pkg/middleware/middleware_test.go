package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/reconcile/pkg/middleware"
)

type recordingSpan struct {
	noop.Span
	name   string
	status codes.Code
	attrs  map[attribute.Key]attribute.Value
}

func (s *recordingSpan) SetName(name string) { s.name = name }
func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

type recordingTracer struct {
	noop.Tracer
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	span := &recordingSpan{name: name, attrs: make(map[attribute.Key]attribute.Value)}
	span.SetAttributes(cfg.Attributes()...)
	t.spans = append(t.spans, span)
	return trace.ContextWithSpan(ctx, span), span
}

func newRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chi.URLParam(r, "id")))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(middleware.Prometheus(
		middleware.WithNamespace("t"),
		middleware.WithRegistry(reg),
	))

	for _, path := range []string{"/items/1", "/items/2", "/boom", "/nope"} {
		serve(h, path)
	}

	expected := `
# HELP t_http_requests_total Total number of HTTP requests by route and status
# TYPE t_http_requests_total counter
t_http_requests_total{route="/boom",status="500"} 1
t_http_requests_total{route="/items/{id}",status="200"} 2
t_http_requests_total{route="unmatched",status="404"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "t_http_requests_total"); err != nil {
		t.Error(err)
	}
	if n, err := testutil.GatherAndCount(reg, "t_http_request_duration_seconds"); err != nil || n != 3 {
		t.Errorf("duration series = %d, %v; want 3", n, err)
	}
}

func TestPrometheusDefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(middleware.Prometheus(middleware.WithRegistry(reg), middleware.WithSubsystem("preview")))
	serve(h, "/healthz")

	if n, err := testutil.GatherAndCount(reg, "reconcile_preview_http_requests_total"); err != nil || n != 1 {
		t.Errorf("series = %d, %v; want 1", n, err)
	}
}

func TestOpenTelemetry(t *testing.T) {
	tracer := &recordingTracer{}
	h := newRouter(middleware.OpenTelemetry(middleware.WithTracer(tracer)))

	if body := serve(h, "/items/7").Body.String(); body != "7" {
		t.Errorf("body = %q, want %q", body, "7")
	}
	serve(h, "/boom")

	if len(tracer.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(tracer.spans))
	}
	tests := []struct {
		span   *recordingSpan
		name   string
		route  string
		target string
		status int64
		code   codes.Code
	}{
		{tracer.spans[0], "GET /items/{id}", "/items/{id}", "/items/7", 200, codes.Ok},
		{tracer.spans[1], "GET /boom", "/boom", "/boom", 500, codes.Error},
	}
	for _, tt := range tests {
		s := tt.span
		if s.name != tt.name {
			t.Errorf("span name = %q, want %q", s.name, tt.name)
		}
		if got := s.attrs["http.route"].AsString(); got != tt.route {
			t.Errorf("%s http.route = %q, want %q", tt.name, got, tt.route)
		}
		if got := s.attrs["http.target"].AsString(); got != tt.target {
			t.Errorf("%s http.target = %q, want %q", tt.name, got, tt.target)
		}
		if got := s.attrs["http.status_code"].AsInt64(); got != tt.status {
			t.Errorf("%s http.status_code = %d, want %d", tt.name, got, tt.status)
		}
		if s.status != tt.code {
			t.Errorf("%s status = %v, want %v", tt.name, s.status, tt.code)
		}
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	tracer := &recordingTracer{}
	h := newRouter(middleware.OpenTelemetry(
		middleware.WithTracer(tracer),
		middleware.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
	))

	serve(h, "/healthz")
	if len(tracer.spans) != 0 {
		t.Errorf("spans = %d, want 0 for a filtered request", len(tracer.spans))
	}
	serve(h, "/items/1")
	if len(tracer.spans) != 1 {
		t.Errorf("spans = %d, want 1", len(tracer.spans))
	}
}
