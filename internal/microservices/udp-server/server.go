package udp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// State of the receive loop.
type State int32

const (
	StateListening State = iota
	StateProcessing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Server is the debug responder: it acknowledges every valid JSON datagram
// to a fixed destination, never to the sender.
type Server struct {
	conn    *net.UDPConn
	dest    *net.UDPAddr
	logger  *slog.Logger
	console *Console
	mirror  Mirror
	stats   Stats

	// trace events wait here for the mirror goroutine; full means dropped
	mirrorQueue     chan mirrorItem
	mirrorQueueSize int

	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

func WithConsole(console *Console) Option {
	return func(s *Server) { s.console = console }
}

func WithMirror(mirror Mirror) Option {
	return func(s *Server) { s.mirror = mirror }
}

// WithMirrorQueue sets how many trace events may wait for the mirror.
func WithMirrorQueue(size int) Option {
	return func(s *Server) { s.mirrorQueueSize = size }
}

const defaultMirrorQueueSize = 256

type mirrorItem struct {
	ev  *Event
	log *slog.Logger
}

// Bind opens the UDP socket on bindAddr and resolves destAddr.
// Socket failures are returned as *BindError.
func Bind(bindAddr, destAddr string, opts ...Option) (*Server, error) {
	dest, err := net.ResolveUDPAddr("udp", destAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve destination %s", destAddr)
	}

	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, &BindError{Addr: bindAddr, Err: errors.Wrap(err, "resolve")}
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, &BindError{Addr: bindAddr, Err: err}
	}

	s := &Server{
		conn:    conn,
		dest:    dest,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		console: NewConsole(io.Discard, false),

		mirrorQueueSize: defaultMirrorQueueSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(int32(StateListening))
	return s, nil
}

// Run receives datagrams until ctx is cancelled or the server is closed.
// The socket is closed on return. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	// closing the socket is what unblocks ReadFromUDP
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	if s.mirror != nil {
		stopMirror := s.startMirror(ctx)
		defer stopMirror()
	}

	s.logger.Info("UDP responder listening",
		"bind", s.conn.LocalAddr().String(),
		"dest", s.dest.String())

	buffer := make([]byte, MaxDatagramSize)

	for {
		if s.State() == StateClosed {
			return nil
		}
		s.setState(StateListening)

		n, from, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				s.logger.Info("UDP responder stopped")
				return nil
			}
			s.logger.Error("Error reading UDP datagram", "error", err)
			continue
		}

		s.setState(StateProcessing)
		s.handleDatagram(buffer[:n], from)
	}
}

// handleDatagram runs decode, log, send for one datagram. Every failure is recoverable.
// The mirror only ever sees the event after the acknowledgment went out.
func (s *Server) handleDatagram(data []byte, from *net.UDPAddr) {
	now := time.Now()
	traceID := uuid.NewString()
	log := s.logger.With("trace_id", traceID, "from", from.String())

	s.stats.markReceived(now)

	msg, err := Decode(data)
	if err != nil {
		var decErr *DecodeError
		if errors.As(err, &decErr) {
			decErr.From = from.String()
		}
		s.stats.decodeErrors.Add(1)
		log.Warn("Failed to decode datagram", "bytes", len(data), "error", err)
		s.console.Failed(err)
		s.enqueue(log, &Event{
			TraceID: traceID,
			Kind:    EventDecodeError,
			From:    from.String(),
			Error:   err.Error(),
			At:      now,
		})
		return
	}

	s.console.Received(msg)
	log.Debug("Datagram received", "bytes", len(data), "payload", msg.String())
	ev := &Event{
		TraceID: traceID,
		Kind:    EventReceived,
		From:    from.String(),
		Payload: msg.JSON(),
		At:      now,
	}

	if err := s.sendAck(); err != nil {
		s.stats.sendErrors.Add(1)
		log.Error("Failed to send acknowledgment", "error", err)
		s.console.Failed(err)
	} else {
		s.stats.acknowledged.Add(1)
		log.Debug("Acknowledgment sent", "dest", s.dest.String())
		s.console.Responded()
	}

	s.enqueue(log, ev)
}

func (s *Server) sendAck() error {
	if _, err := s.conn.WriteToUDP(ackPayload, s.dest); err != nil {
		return &SendError{Dest: s.dest.String(), Err: err}
	}
	return nil
}

// startMirror runs the single goroutine that publishes queued events.
// The returned func stops it and waits for it to exit.
func (s *Server) startMirror(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	s.mirrorQueue = make(chan mirrorItem, s.mirrorQueueSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for item := range s.mirrorQueue {
			s.publish(ctx, item)
		}
	}()

	return func() {
		// pending events fail fast once ctx is cancelled
		cancel()
		close(s.mirrorQueue)
		wg.Wait()
	}
}

// enqueue never blocks the receive loop.
func (s *Server) enqueue(log *slog.Logger, ev *Event) {
	if s.mirrorQueue == nil {
		return
	}
	select {
	case s.mirrorQueue <- mirrorItem{ev: ev, log: log}:
	default:
		s.stats.mirrorDropped.Add(1)
		log.Debug("Trace event dropped, mirror queue full")
	}
}

func (s *Server) publish(ctx context.Context, item mirrorItem) {
	if err := s.mirror.Publish(ctx, item.ev); err != nil {
		if errors.Is(err, ErrMirrorThrottled) {
			s.stats.mirrorDropped.Add(1)
			item.log.Debug("Trace event dropped", "error", err)
			return
		}
		item.log.Warn("Failed to mirror trace event", "error", err)
	}
}

// Close releases the socket. Safe to call more than once.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.setState(StateClosed)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Server) setState(st State) {
	// never leave Closed
	for {
		cur := s.state.Load()
		if State(cur) == StateClosed {
			return
		}
		if s.state.CompareAndSwap(cur, int32(st)) {
			return
		}
	}
}

func (s *Server) State() State {
	return State(s.state.Load())
}

// LocalAddr returns the bound receive endpoint.
func (s *Server) LocalAddr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// DestAddr returns the acknowledgment destination.
func (s *Server) DestAddr() *net.UDPAddr {
	return s.dest
}

func (s *Server) Stats() Snapshot {
	return s.stats.Snapshot()
}
