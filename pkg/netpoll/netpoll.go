package netpoll

import (
	"errors"
	"net"
	"sync"
)

var (
	// ErrUnsupported is returned on platforms without epoll.
	ErrUnsupported = errors.New("netpoll: not supported on this platform")

	// ErrClosed is returned when operating on a closed poller or socket.
	ErrClosed = errors.New("netpoll: use of closed descriptor")
)

// Token identifies a registration. Tokens are never reused by a Poller and
// are never zero.
type Token uint32

// Event describes readiness. It doubles as the registration interest.
type Event uint8

const (
	// Readable means the descriptor has data, a pending connection, or a
	// hang-up to observe with a read.
	Readable Event = 1 << iota
	// Writable means the descriptor accepts more outbound bytes.
	Writable

	// ReadWrite is both readable and writable.
	ReadWrite = Readable | Writable
)

func (e Event) String() string {
	switch e {
	case Readable:
		return "read"
	case Writable:
		return "write"
	case ReadWrite:
		return "both"
	default:
		return "none"
	}
}

// Notification is one readiness report.
type Notification struct {
	Token Token
	Event Event
}

// Poller multiplexes readiness of registered descriptors.
type Poller struct {
	epfd   int
	wakefd int

	mu     sync.Mutex
	next   Token
	tokens map[int]Token
	closed bool
}

// Listener is a non-blocking listening socket.
type Listener struct {
	fd   int
	addr net.Addr

	closeOnce sync.Once
	closeErr  error
}

// Conn is a non-blocking stream socket. Read and Write never block:
// when no progress is possible they return an error satisfying
// errors.Is(err, syscall.EAGAIN).
type Conn struct {
	fd     int
	remote net.Addr

	closeOnce sync.Once
	closeErr  error
}

// Fd returns the listening descriptor.
func (l *Listener) Fd() int { return l.fd }

// Addr returns the bound address, including an ephemeral port.
func (l *Listener) Addr() net.Addr { return l.addr }

// Fd returns the connection descriptor.
func (c *Conn) Fd() int { return c.fd }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.remote }
