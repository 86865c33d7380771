package redif

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/redif-go/pkg/frame"
	"github.com/yndnr/redif-go/pkg/hexdump"
	"github.com/yndnr/redif-go/pkg/netpoll"
	"github.com/yndnr/redif-go/pkg/resp"
)

// hexdumpLimit bounds the buffered bytes dumped on a protocol error.
const hexdumpLimit = 256

// Server is a RESP reactor bound to one listening socket.
type Server struct {
	cfg     Config
	handler Handler
	lock    sync.Locker
	logger  *slog.Logger
	metrics *Metrics

	// warnLimiter throttles teardown warnings; suppressed counts the
	// warnings dropped since the last one logged.
	warnLimiter *rate.Limiter
	suppressed  int

	poller   *netpoll.Poller
	listener *netpoll.Listener
	lnToken  netpoll.Token

	// conns is owned by the worker loop.
	conns map[netpoll.Token]*conn

	serving atomic.Bool
	closed  atomic.Bool
}

// New creates a Server. Call Listen, then Serve.
func New(cfg Config, h Handler) *Server {
	cfg = cfg.withDefaults()
	return &Server{
		cfg:         cfg,
		handler:     h,
		lock:        cfg.Lock,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		warnLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
		conns:       make(map[netpoll.Token]*conn),
	}
}

// ListenAndServe binds cfg.Addr and serves h until ctx is cancelled.
func ListenAndServe(ctx context.Context, cfg Config, h Handler) error {
	s := New(cfg, h)
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen creates the poller, binds the listening socket and registers it.
func (s *Server) Listen() error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}

	poller, err := netpoll.NewPoller()
	if err != nil {
		return fmt.Errorf("redif: create poller: %w", err)
	}
	ln, err := netpoll.Listen(s.cfg.Network, s.cfg.Addr)
	if err != nil {
		_ = poller.Close()
		return fmt.Errorf("redif: listen %s: %w", s.cfg.Addr, err)
	}
	tok, err := poller.Register(ln.Fd(), netpoll.Readable, true)
	if err != nil {
		_ = ln.Close()
		_ = poller.Close()
		return fmt.Errorf("redif: register listener: %w", err)
	}

	s.poller = poller
	s.listener = ln
	s.lnToken = tok
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the reactor until ctx is cancelled or the poller fails. It
// calls Listen if needed. On return every connection, the listener and the
// poller are closed; a Server cannot be served again.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	if !s.serving.CompareAndSwap(false, true) {
		return ErrServerClosed
	}
	defer s.closed.Store(true)

	events := make(chan netpoll.Notification, s.cfg.EventQueueSize)
	pollErr := make(chan error, 1)
	stopWake := context.AfterFunc(ctx, func() { _ = s.poller.Wake() })
	defer stopWake()

	go s.poll(ctx, events, pollErr)

	s.logger.Info("redif server started", "addr", s.listener.Addr().String())
	for n := range events {
		s.dispatch(n)
	}

	err := <-pollErr
	s.shutdown()
	if err != nil {
		s.logger.Error("redif server stopped", "error", err)
		return err
	}
	s.logger.Info("redif server stopped")
	return nil
}

// poll relays notifications to the worker. It owns no connection state.
func (s *Server) poll(ctx context.Context, out chan<- netpoll.Notification, errc chan<- error) {
	defer close(out)
	for {
		if ctx.Err() != nil {
			errc <- nil
			return
		}
		ns, err := s.poller.Wait(s.cfg.PollTimeout)
		if err != nil {
			errc <- fmt.Errorf("redif: poll: %w", err)
			return
		}
		for _, n := range ns {
			select {
			case out <- n:
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
	}
}

func (s *Server) dispatch(n netpoll.Notification) {
	if n.Token == s.lnToken {
		s.accept()
		return
	}

	c, ok := s.conns[n.Token]
	if !ok {
		s.logger.Debug("notification for unknown connection", "token", uint32(n.Token), "event", n.Event.String())
		return
	}
	if err := s.service(c, n.Event); err != nil {
		s.teardown(c, n.Event, err)
		return
	}
	if c.reader.AtEOF() && c.writer.Pending() == 0 {
		s.teardown(c, n.Event, frame.ErrEndOfStream)
	}
}

// accept takes every pending connection. The listener is edge-triggered,
// so the queue must be drained until EAGAIN.
func (s *Server) accept() {
	for {
		sock, err := s.listener.Accept()
		if err != nil {
			if !errors.Is(err, syscall.EAGAIN) {
				s.warn("accept failed", "error", err)
			}
			return
		}

		tok, err := s.poller.Register(sock.Fd(), netpoll.ReadWrite, true)
		if err != nil {
			_ = sock.Close()
			s.warn("register connection failed", "remote", sock.RemoteAddr().String(), "error", err)
			continue
		}

		c := newConn(tok, sock, s.cfg.ReadBufferSize)
		s.conns[tok] = c
		s.metrics.accepted()
		s.logger.Debug("connection accepted", c.logAttrs()...)
	}
}

// service handles one notification for c. Any returned error closes c.
func (s *Server) service(c *conn, ev netpoll.Event) error {
	if ev&netpoll.Readable != 0 && !c.reader.AtEOF() {
		c.state = stateReading
		n, err := c.reader.Read(c.sock)
		s.metrics.read(n)
		if err != nil {
			return err
		}
		if err := s.drain(c); err != nil {
			return err
		}
	}
	return s.flush(c)
}

// drain passes every queued request of c to the handler under one lock
// acquisition and queues the encoded replies as a single buffer.
func (s *Server) drain(c *conn) error {
	if c.reader.Queued() == 0 {
		return nil
	}

	start := time.Now()
	out, frames, replies, err := s.handleBatch(c)
	s.metrics.batch(frames, replies, time.Since(start))
	if err != nil {
		return err
	}
	c.writer.Queue(out)
	return nil
}

func (s *Server) handleBatch(c *conn) (out []byte, frames, replies int, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()

	for {
		req, ok := c.reader.Next()
		if !ok {
			return out, frames, replies, nil
		}
		frames++
		if reply, ok := s.handler.Handle(req); ok {
			out = resp.AppendEncode(out, reply)
			replies++
		}
	}
}

func (s *Server) flush(c *conn) error {
	if c.writer.Pending() == 0 {
		return nil
	}
	c.state = stateWriting
	n, err := c.writer.Flush(c.sock)
	s.metrics.written(n)
	if err != nil {
		return err
	}
	if c.writer.Pending() == 0 {
		c.state = stateReading
	}
	return nil
}

// teardown removes c from the registry and closes its socket.
func (s *Server) teardown(c *conn, ev netpoll.Event, cause error) {
	prev := c.state
	s.release(c)

	reason := closeReason(cause)
	s.metrics.closed(reason)

	attrs := append(c.logAttrs(), "event", ev.String(), "state", prev.String(), "error", cause)
	switch reason {
	case ReasonEOF:
		s.logger.Info("connection closed by peer", attrs...)
	case ReasonProtocol:
		s.warn("connection closed on protocol error", attrs...)
		if s.logger.Enabled(context.Background(), slog.LevelDebug) {
			s.logger.Debug("buffered bytes at protocol error",
				append(c.logAttrs(), "dump", hexdump.Dump(c.reader.Buffered(), hexdumpLimit))...)
		}
	default:
		s.warn("connection closed on error", attrs...)
	}
}

func (s *Server) release(c *conn) {
	delete(s.conns, c.token)
	c.state = stateClosed
	if err := s.poller.Deregister(c.sock.Fd()); err != nil {
		s.logger.Debug("deregister failed", append(c.logAttrs(), "error", err)...)
	}
	_ = c.sock.Close()
}

// warn logs at warn level, throttled by warnLimiter.
func (s *Server) warn(msg string, args ...any) {
	if !s.warnLimiter.Allow() {
		s.suppressed++
		return
	}
	if s.suppressed > 0 {
		args = append(args, "suppressed", s.suppressed)
		s.suppressed = 0
	}
	s.logger.Warn(msg, args...)
}

// shutdown closes every connection, the listener and the poller. Pending
// replies get one last non-blocking flush.
func (s *Server) shutdown() {
	for _, c := range s.conns {
		if c.writer.Pending() > 0 {
			n, _ := c.writer.Flush(c.sock)
			s.metrics.written(n)
		}
		s.release(c)
		s.metrics.closed(ReasonShutdown)
	}
	if err := s.poller.Deregister(s.listener.Fd()); err != nil {
		s.logger.Debug("deregister listener failed", "error", err)
	}
	if err := s.listener.Close(); err != nil {
		s.logger.Warn("close listener failed", "error", err)
	}
	if err := s.poller.Close(); err != nil {
		s.logger.Warn("close poller failed", "error", err)
	}
}

func closeReason(err error) string {
	switch {
	case errors.Is(err, io.EOF):
		return ReasonEOF
	case errors.Is(err, resp.ErrProtocol):
		return ReasonProtocol
	case errors.Is(err, frame.ErrFrameTooLarge):
		return ReasonFrameTooLarge
	case errors.Is(err, ErrHandlerPanic):
		return ReasonHandlerPanic
	default:
		return ReasonIO
	}
}
