package redif

import (
	"github.com/oklog/ulid/v2"

	"github.com/yndnr/redif-go/pkg/frame"
	"github.com/yndnr/redif-go/pkg/netpoll"
)

// connState tracks a connection through its life. A closed connection is
// never reopened.
type connState uint8

const (
	stateRegistered connState = iota
	stateReading
	stateWriting
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateRegistered:
		return "registered"
	case stateReading:
		return "reading"
	case stateWriting:
		return "writing"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// conn is one accepted client. It is owned by the worker goroutine.
type conn struct {
	token  netpoll.Token
	id     ulid.ULID
	sock   *netpoll.Conn
	reader *frame.Reader
	writer *frame.Writer
	state  connState
}

func newConn(tok netpoll.Token, sock *netpoll.Conn, readBufferSize int) *conn {
	return &conn{
		token:  tok,
		id:     ulid.Make(),
		sock:   sock,
		reader: frame.NewReader(readBufferSize),
		writer: frame.NewWriter(),
		state:  stateRegistered,
	}
}

// logAttrs returns the attributes identifying c in every log line.
func (c *conn) logAttrs() []any {
	return []any{
		"token", uint32(c.token),
		"conn_id", c.id.String(),
		"remote", c.sock.RemoteAddr().String(),
	}
}
