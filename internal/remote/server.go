package remote

import (
	"bufio"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/go-dsh/dsh/internal/session"
	"github.com/go-dsh/dsh/internal/shell"
)

// Server accepts TCP connections and runs one command pipeline per
// request, per connection (spec §4.8). Each connection is handled in
// its own goroutine; a connection processes at most one outstanding
// request at a time (spec §5).
type Server struct {
	Addr string

	ln      net.Listener
	stopped atomic.Bool
	log     *zap.Logger
}

// NewServer returns a Server bound to addr ("[iface]:port", default
// interface 0.0.0.0 per spec §6 if iface is empty).
func NewServer(addr string) *Server {
	log := zap.Must(zap.NewProduction()).Named("remote")
	return &Server{Addr: addr, log: log}
}

// ListenAndServe binds the listener and runs the accept loop until
// Stop is called or accept fails fatally (spec §4.8's "boot" and
// "accept loop"). Go's net.Listen already enables address reuse for
// TCP listeners and uses the platform's default listen backlog, which
// comfortably exceeds the spec's backlog >= 20 floor on every
// realistic system.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return wrapf(ErrCommunication, "listen %s", s.Addr)
	}
	s.ln = ln
	s.log.Info("listening", zap.String("addr", s.Addr))
	defer s.log.Sync()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.stopped.Load() {
				return nil
			}
			s.log.Error("accept failed", zap.Error(err))
			return wrapf(ErrCommunication, "accept")
		}
		go s.handleConn(conn)
	}
}

// Stop signals the accept loop to exit and closes the listener,
// unblocking any pending Accept (spec §5's "cooperative shutdown
// flag": closing the listener is the idiomatic Go equivalent of the
// original's non-blocking-accept-plus-poll loop; see DESIGN.md).
func (s *Server) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		s.ln.Close()
	}
}

// handleConn implements spec §4.8's per-connection protocol, logging
// each request's command, exit status, and latency the way the pack's
// zap request-logging middleware logs method/route/status/latency per
// HTTP request.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	clientAddr := conn.RemoteAddr().String()
	log := s.log.With(zap.String("client_addr", clientAddr))
	log.Info("connection opened")

	sess := session.New()
	r := bufio.NewReader(conn)

	for {
		req, err := ReadRequest(r)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Warn("read failed", zap.Error(err))
			}
			return
		}

		req = shell.Normalize(req)

		switch req {
		case "exit":
			_ = WriteExitSentinel(conn)
			log.Info("connection closed", zap.String("reason", "exit"))
			return
		case "stop-server":
			_ = WriteExitSentinel(conn)
			log.Info("connection closed", zap.String("reason", "stop-server"))
			s.Stop()
			return
		}

		start := time.Now()
		status, _ := shell.RunLine(sess, req, conn, conn, conn)
		_ = WriteEOF(conn)

		fields := []zap.Field{
			zap.String("command", req),
			zap.Int("status", status.Code),
			zap.Duration("latency", time.Since(start)),
		}
		if status.Code != 0 {
			log.Warn("command", fields...)
		} else {
			log.Info("command", fields...)
		}

		if status.Kind == shell.StatusOKExit {
			log.Info("connection closed", zap.String("reason", "ok_exit"))
			return
		}
	}
}
