package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/fixture"
	"github.com/vango-dev/reconcile/pkg/dom/htmldom"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// RenderResponse is the body of a successful POST /render.
type RenderResponse struct {
	Sessions int    `json:"sessions"`
	HTML     string `json:"html"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.Server.MaxMessageSize)

	sess := newSession(s, conn)
	if err := sess.handshake(); err != nil {
		sess.logger.Warn("handshake failed", "error", err)
		conn.Close()
		return
	}
	// The request context ends with the upgrade handler; passes outlive it.
	if err := s.attach(context.Background(), sess); err != nil {
		sess.logger.Error("mount failed", "error", err)
		conn.Close()
		return
	}
	go sess.run()
}

// handleRender decodes a fixture from the body and renders it for every
// client.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.config.Server.MaxMessageSize)
	data, err := io.ReadAll(body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.New("E062").WithOp("render").Wrap(err))
		return
	}

	tree, err := fixture.Parse(data,
		fixture.WithFile("request body"),
		fixture.WithHandler(s.onEvent),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	n, err := s.Render(r.Context(), tree)
	if err != nil {
		s.logger.Warn("render failed", "request_id", chimw.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Debug("rendered", "request_id", chimw.GetReqID(r.Context()), "sessions", n, "tree", tree.String())

	writeJSON(w, http.StatusOK, RenderResponse{Sessions: n, HTML: s.renderHTML(r.Context(), tree)})
}

// handleTree serves the current tree as HTML.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, s.renderHTML(r.Context(), tree))
}

// renderHTML mounts a copy of tree into a fresh in-memory document.
func (s *Server) renderHTML(ctx context.Context, tree *vdom.VNode) string {
	doc := htmldom.New()
	p := patch.New(doc, patch.WithLogger(s.logger), patch.WithTracer(s.tracer))
	if _, err := p.Mount(ctx, tree.Clone(), doc.Root()); err != nil {
		s.logger.Warn("html render failed", "error", err)
	}
	return doc.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	if ve, ok := err.(*errors.VangoError); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, ve.FormatJSON())
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
