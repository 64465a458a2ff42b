package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/protocol"
	"github.com/vango-dev/reconcile/pkg/server"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

type harness struct {
	srv    *server.Server
	ts     *httptest.Server
	events chan string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.New()
	cfg.Metrics.Namespace = "test"

	h := &harness{events: make(chan string, 8)}
	h.srv = server.New(cfg,
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		server.WithTracer(noop.NewTracerProvider().Tracer("test")),
		server.WithEventHandler(func(path, trigger string, ev dom.Event) {
			h.events <- path + " " + trigger + " " + ev.(*protocol.Event).Detail
		}),
	)
	h.ts = httptest.NewServer(h.srv.Handler())
	t.Cleanup(h.ts.Close)
	return h
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func (h *harness) dial(t *testing.T) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(ft protocol.FrameType, payload []byte) {
	c.t.Helper()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, protocol.NewFrame(ft, payload).Encode()); err != nil {
		c.t.Fatalf("WriteMessage() error = %v", err)
	}
}

// next returns the next frame of type ft, skipping heartbeat pings.
func (c *client) next(ft protocol.FrameType) *protocol.Frame {
	c.t.Helper()
	for {
		c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.t.Fatalf("ReadMessage() error = %v", err)
		}
		f, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.t.Fatalf("DecodeFrame() error = %v", err)
		}
		if f.Type == ft {
			return f
		}
		if f.Type != protocol.FrameControl {
			c.t.Fatalf("frame type = %s, want %s", f.Type, ft)
		}
	}
}

func (c *client) batch() *protocol.Batch {
	c.t.Helper()
	var a protocol.Assembler
	for {
		b, err := a.Add(c.next(protocol.FrameMutations))
		if err != nil {
			c.t.Fatalf("Add() error = %v", err)
		}
		if b != nil {
			return b
		}
	}
}

func (c *client) hello() *protocol.ServerHello {
	c.t.Helper()
	c.send(protocol.FrameHandshake, protocol.EncodeClientHello(protocol.NewClientHello("test")))
	sh, err := protocol.DecodeServerHello(c.next(protocol.FrameHandshake).Payload)
	if err != nil {
		c.t.Fatalf("DecodeServerHello() error = %v", err)
	}
	return sh
}

func opStrings(b *protocol.Batch) []string {
	out := make([]string, len(b.Ops))
	for i, op := range b.Ops {
		out[i] = op.String()
	}
	return out
}

func (h *harness) post(t *testing.T, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(h.ts.URL+"/render", "application/yaml", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /render error = %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func (h *harness) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := http.Get(h.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
	}
	data, _ := io.ReadAll(resp.Body)
	return string(data)
}

func TestStreamMountAndPatch(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)

	sh := c.hello()
	if sh.Status != protocol.HandshakeOK || sh.Document != "reconcile" || sh.NextSeq != 1 {
		t.Fatalf("ServerHello = %+v, want OK for reconcile at seq 1", sh)
	}
	mount := c.batch()
	if mount.Seq != 1 || len(mount.Ops) != 0 {
		t.Errorf("mount batch = %+v, want empty batch 1", mount)
	}

	resp, body := h.post(t, "{tag: button, attrs: {id: b}, on: click, children: [go]}")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /render status = %d, body %s", resp.StatusCode, body)
	}
	var rr server.RenderResponse
	if err := json.Unmarshal([]byte(body), &rr); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if diff := cmp.Diff(server.RenderResponse{Sessions: 1, HTML: `<button id="b">go</button>`}, rr); diff != "" {
		t.Errorf("render response mismatch (-want +got):\n%s", diff)
	}

	update := c.batch()
	want := []string{
		`CreateElement #2 button`,
		`SetAttr #2 id="b"`,
		`Listen #2 click @1`,
		`CreateText #3 "go"`,
		`InsertBefore #3 in #2`,
		`InsertBefore #2 in #1`,
	}
	if update.Seq != 2 {
		t.Errorf("update Seq = %d, want 2", update.Seq)
	}
	if diff := cmp.Diff(want, opStrings(update)); diff != "" {
		t.Errorf("update ops mismatch (-want +got):\n%s", diff)
	}

	c.send(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{Listener: 1, Trigger: "click", Detail: "x"}))
	select {
	case got := <-h.events:
		if got != "button click x" {
			t.Errorf("event = %q, want %q", got, "button click x")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not dispatched")
	}

	c.send(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{Listener: 9, Trigger: "click"}))
	em, err := protocol.DecodeErrorMessage(c.next(protocol.FrameError).Payload)
	if err != nil {
		t.Fatalf("DecodeErrorMessage() error = %v", err)
	}
	if em.Code != protocol.ErrListenerNotFound || em.Fatal {
		t.Errorf("error frame = %v, want non-fatal ListenerNotFound", em)
	}

	if got := h.get(t, "/render"); got != `<button id="b">go</button>` {
		t.Errorf("GET /render = %q", got)
	}
	metrics := h.get(t, "/metrics")
	for _, line := range []string{"test_ws_clients 1", "test_frames_sent_total 2", "test_passes_total", `test_http_requests_total{route="/render",status="200"} 2`} {
		if !strings.Contains(metrics, line) {
			t.Errorf("/metrics missing %q", line)
		}
	}
}

func TestEventHandlerRenders(t *testing.T) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	var srv *server.Server
	srv = server.New(config.New(),
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		server.WithTracer(noop.NewTracerProvider().Tracer("test")),
		server.WithEventHandler(func(path, trigger string, ev dom.Event) {
			n, err := srv.Render(context.Background(), vdom.P("clicked"))
			done <- result{n, err}
		}),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	h := &harness{srv: srv, ts: ts}

	c := h.dial(t)
	c.hello()
	c.batch()
	if resp, body := h.post(t, "{tag: button, on: click, children: [go]}"); resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /render status = %d, body %s", resp.StatusCode, body)
	}
	c.batch()

	c.send(protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{Listener: 1, Trigger: "click"}))
	select {
	case r := <-done:
		if r.err != nil || r.n != 1 {
			t.Errorf("Render() from handler = %d, %v, want 1, nil", r.n, r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Render() from an event handler did not return")
	}

	update := c.batch()
	if update.Seq != 3 || len(update.Ops) == 0 {
		t.Errorf("update = seq %d with %d ops, want seq 3 with ops", update.Seq, len(update.Ops))
	}
	if got := h.get(t, "/render"); got != "<p>clicked</p>" {
		t.Errorf("GET /render = %q, want %q", got, "<p>clicked</p>")
	}
}

func TestPingPong(t *testing.T) {
	h := newHarness(t)
	c := h.dial(t)
	c.hello()
	c.batch()

	c.send(protocol.FrameControl, protocol.EncodeControl(protocol.NewPing(42)))
	for {
		ctl, err := protocol.DecodeControl(c.next(protocol.FrameControl).Payload)
		if err != nil {
			t.Fatalf("DecodeControl() error = %v", err)
		}
		if ctl.Type == protocol.ControlPong {
			if ctl.Timestamp != 42 {
				t.Errorf("pong Timestamp = %d, want 42", ctl.Timestamp)
			}
			break
		}
	}

	c.send(protocol.FrameHandshake, protocol.EncodeClientHello(protocol.NewClientHello("again")))
	em, err := protocol.DecodeErrorMessage(c.next(protocol.FrameError).Payload)
	if err != nil {
		t.Fatalf("DecodeErrorMessage() error = %v", err)
	}
	if em.Code != protocol.ErrHandshake {
		t.Errorf("error Code = %v, want %v", em.Code, protocol.ErrHandshake)
	}
}

func TestHeartbeatWithTinyReadTimeout(t *testing.T) {
	cfg := config.New()
	cfg.Server.ReadTimeout = "1ns"
	srv := server.New(cfg,
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		server.WithTracer(noop.NewTracerProvider().Tracer("test")),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	h := &harness{srv: srv, ts: ts}

	c := h.dial(t)
	c.hello()
	c.batch()
	ctl, err := protocol.DecodeControl(c.next(protocol.FrameControl).Payload)
	if err != nil {
		t.Fatalf("DecodeControl() error = %v", err)
	}
	if ctl.Type != protocol.ControlPing {
		t.Errorf("control Type = %v, want ping", ctl.Type)
	}
}

func TestSessionsFollowRenders(t *testing.T) {
	h := newHarness(t)
	if resp, body := h.post(t, "{tag: p, children: [one]}"); resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /render status = %d, body %s", resp.StatusCode, body)
	}

	a := h.dial(t)
	a.hello()
	if diff := cmp.Diff([]string{
		`CreateElement #2 p`,
		`CreateText #3 "one"`,
		`InsertBefore #3 in #2`,
		`InsertBefore #2 in #1`,
	}, opStrings(a.batch())); diff != "" {
		t.Errorf("late mount mismatch (-want +got):\n%s", diff)
	}

	b := h.dial(t)
	b.hello()
	b.batch()

	h.post(t, "{tag: p, children: [two]}")
	for name, c := range map[string]*client{"a": a, "b": b} {
		if diff := cmp.Diff([]string{`SetText #3 "two"`}, opStrings(c.batch())); diff != "" {
			t.Errorf("client %s ops mismatch (-want +got):\n%s", name, diff)
		}
	}

	a.send(protocol.FrameControl, protocol.EncodeControl(protocol.NewClose(protocol.CloseNormal, "bye")))
	deadline := time.Now().Add(5 * time.Second)
	for h.srv.Sessions() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Sessions() = %d, want 1 after a client closed", h.srv.Sessions())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandshakeRejected(t *testing.T) {
	tests := []struct {
		name  string
		ft    protocol.FrameType
		data  []byte
		state protocol.HandshakeStatus
	}{
		{"event_first", protocol.FrameEvent, protocol.EncodeEvent(&protocol.Event{Listener: 1, Trigger: "click"}), protocol.HandshakeInvalidFormat},
		{"garbage", protocol.FrameHandshake, []byte{0x01}, protocol.HandshakeInvalidFormat},
		{"version", protocol.FrameHandshake, protocol.EncodeClientHello(&protocol.ClientHello{
			Version: protocol.ProtocolVersion{Major: 9},
		}), protocol.HandshakeVersionMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			c := h.dial(t)
			c.send(tc.ft, tc.data)
			sh, err := protocol.DecodeServerHello(c.next(protocol.FrameHandshake).Payload)
			if err != nil {
				t.Fatalf("DecodeServerHello() error = %v", err)
			}
			if sh.Status != tc.state {
				t.Errorf("Status = %s, want %s", sh.Status, tc.state)
			}
			if n := h.srv.Sessions(); n != 0 {
				t.Errorf("Sessions() = %d, want 0", n)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(t, "tag: ul\ncolour: red\n")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, `"E181"`) {
		t.Errorf("body = %s, want an E181 error", body)
	}

	resp, body = h.post(t, strings.Repeat("x", config.DefaultMaxMessageSize+1))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
	if !strings.Contains(body, `"E062"`) {
		t.Errorf("body = %s, want an E062 error", body)
	}

	if got := h.get(t, "/healthz"); got != "OK" {
		t.Errorf("GET /healthz = %q, want OK", got)
	}
}
