package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom/remote"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/protocol"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Session is one websocket client. It owns a remote document mirroring
// the client's tree and the virtual tree last applied to it.
type Session struct {
	id      uint64
	server  *Server
	conn    *websocket.Conn
	logger  *slog.Logger
	doc     *remote.Document
	patcher *patch.Patcher

	readTimeout  time.Duration
	writeTimeout time.Duration

	// mu guards doc, tree and writes to conn.
	mu   sync.Mutex
	tree *vdom.VNode

	done      chan struct{}
	closeOnce sync.Once
}

func newSession(s *Server, conn *websocket.Conn) *Session {
	id := s.newSessionID()
	logger := s.logger.With("session", id)
	doc := remote.New()
	return &Session{
		id:     id,
		server: s,
		conn:   conn,
		logger: logger,
		doc:    doc,
		patcher: patch.New(doc,
			patch.WithLogger(logger),
			patch.WithMetrics(s.metrics),
			patch.WithTracer(s.tracer),
			patch.WithName(fmt.Sprintf("%s/%d", s.config.Name, id)),
		),
		readTimeout:  s.config.ReadTimeout(),
		writeTimeout: s.config.WriteTimeout(),
		tree:         vdom.Empty(),
		done:         make(chan struct{}),
	}
}

// handshake reads the ClientHello and answers it.
func (s *Session) handshake() error {
	s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return errors.New("E060").WithOp("handshake").Wrap(err)
	}

	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		s.sendHello(protocol.HandshakeInvalidFormat)
		return errors.New("E061").WithOp("handshake").Wrap(err)
	}
	if frame.Type != protocol.FrameHandshake {
		s.sendHello(protocol.HandshakeInvalidFormat)
		return errors.New("E061").WithOp("handshake").
			WithDetail("Expected a Handshake frame, got " + frame.Type.String())
	}
	hello, err := protocol.DecodeClientHello(frame.Payload)
	if err != nil {
		s.sendHello(protocol.HandshakeInvalidFormat)
		return errors.New("E061").WithOp("handshake").Wrap(err)
	}
	if !hello.Version.Compatible() {
		s.sendHello(protocol.HandshakeVersionMismatch)
		return errors.New("E060").WithOp("handshake").
			WithDetail(fmt.Sprintf("Client speaks protocol %d.%d", hello.Version.Major, hello.Version.Minor))
	}

	s.logger.Info("client connected", "client", hello.Client,
		"version", fmt.Sprintf("%d.%d", hello.Version.Major, hello.Version.Minor))
	return s.sendHello(protocol.HandshakeOK)
}

func (s *Session) sendHello(status protocol.HandshakeStatus) error {
	hello := &protocol.ServerHello{
		Status:   status,
		Document: s.server.config.Name,
		NextSeq:  s.doc.NextSeq(),
	}
	frame := protocol.NewFrame(protocol.FrameHandshake, protocol.EncodeServerHello(hello))
	return s.writeFrame(frame)
}

// mount applies the first tree. The caller holds the server lock.
func (s *Session) mount(ctx context.Context, tree *vdom.VNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = tree.Clone()
	_, err := s.patcher.Mount(ctx, s.tree, s.doc.Root())
	if err != nil {
		return err
	}
	return s.flush()
}

// update reconciles the client from its current tree to tree. The caller
// holds the server lock. A failed pass leaves the client out of step, so
// the connection is dropped and the client is expected to reconnect.
func (s *Session) update(ctx context.Context, tree *vdom.VNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	default:
	}

	next := tree.Clone()
	_, err := s.patcher.Reconcile(ctx, s.tree, next, s.doc.Root(), nil)
	s.tree = next
	if ferr := s.flush(); ferr != nil {
		s.conn.Close()
		return ferr
	}
	if err != nil {
		s.logger.Warn("pass failed, dropping client", "error", err)
		s.writeFrame(protocol.NewFrame(protocol.FrameError,
			protocol.EncodeErrorMessage(protocol.NewFatalError(protocol.ErrServerError, "reconcile failed"))))
		s.conn.Close()
	}
	return err
}

// flush sends the ops recorded since the last flush. mu must be held.
func (s *Session) flush() error {
	frames, err := protocol.EncodeFrames(s.doc.Flush(), protocol.MaxPayloadSize)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := s.writeFrame(f); err != nil {
			return err
		}
	}
	s.server.metrics.FramesSent(len(frames))
	return nil
}

func (s *Session) writeFrame(f *protocol.Frame) error {
	s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(websocket.BinaryMessage, f.Encode())
}

func (s *Session) writeLocked(f *protocol.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFrame(f)
}

// run reads client frames until the connection closes. It starts the
// heartbeat and detaches the session on return.
func (s *Session) run() {
	defer s.close()
	go s.heartbeat()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", errors.New("E061").Wrap(err))
			s.sendError(protocol.ErrInvalidFrame, err.Error())
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEvent(frame.Payload)
		case protocol.FrameControl:
			if !s.handleControl(frame.Payload) {
				return
			}
		case protocol.FrameHandshake:
			s.sendError(protocol.ErrHandshake, "already connected")
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
			s.sendError(protocol.ErrInvalidFrame, "unexpected "+frame.Type.String()+" frame")
		}
	}
}

func (s *Session) handleEvent(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.sendError(protocol.ErrBadEvent, err.Error())
		return
	}

	// The handler runs without mu so that it may call Server.Render.
	s.mu.Lock()
	fn, err := s.doc.Listener(ev)
	s.mu.Unlock()
	if err != nil {
		s.logger.Debug("event dropped", "error", errors.New("E064").Wrap(err))
		s.sendError(protocol.ErrListenerNotFound, err.Error())
		return
	}
	fn(ev)
}

// handleControl answers a control frame and reports whether the
// connection stays open.
func (s *Session) handleControl(payload []byte) bool {
	c, err := protocol.DecodeControl(payload)
	if err != nil {
		s.logger.Warn("control decode error", "error", err)
		return true
	}

	switch c.Type {
	case protocol.ControlPing:
		if err := s.writeLocked(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(c.Pong()))); err != nil {
			s.logger.Error("pong error", "error", err)
		}
	case protocol.ControlPong:
		s.logger.Debug("received pong", "timestamp", c.Timestamp)
	case protocol.ControlClose:
		s.logger.Info("client closing", "reason", c.Reason, "message", c.Message)
		return false
	}
	return true
}

func (s *Session) sendError(code protocol.ErrorCode, message string) {
	f := protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(protocol.NewError(code, message)))
	if err := s.writeLocked(f); err != nil {
		s.logger.Error("error frame write failed", "error", err)
	}
}

// heartbeat pings the client at half the read timeout so that an idle but
// healthy client answers before its read deadline.
func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.readTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ping := protocol.NewPing(uint64(time.Now().UnixMilli()))
			if err := s.writeLocked(protocol.NewFrame(protocol.FrameControl, protocol.EncodeControl(ping))); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// shutdown tells the client the server is going away and closes the
// connection. run notices and detaches the session.
func (s *Session) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeFrame(protocol.NewFrame(protocol.FrameControl,
		protocol.EncodeControl(protocol.NewClose(protocol.CloseServerShutdown, "server shutting down"))))
	s.conn.Close()
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.server.detach(s)
		s.conn.Close()
		s.logger.Info("client disconnected")
	})
}
