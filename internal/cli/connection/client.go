package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/yndnr/redif-go/pkg/resp"
)

const (
	// DefaultTimeout bounds dialing and each round trip when the caller's
	// context carries no deadline.
	DefaultTimeout = 5 * time.Second

	// MaxReplySize caps the bytes buffered for a single reply.
	MaxReplySize = 512 * 1024 * 1024

	readChunk = 16 * 1024
)

var (
	// ErrNoCommand is returned by Do without arguments.
	ErrNoCommand = errors.New("connection: empty command")

	// ErrReplyTooLarge is returned when a reply exceeds MaxReplySize.
	ErrReplyTooLarge = errors.New("connection: reply too large")
)

// Client is a blocking RESP client. It is safe for concurrent use; calls
// are serialized.
type Client struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
	buf  []byte
}

// NewClient creates a client for addr. A non-positive timeout means
// DefaultTimeout. No connection is made until the first Do.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (c *Client) Addr() string { return c.addr }

// Connect dials the server if not already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connect(ctx)
}

func (c *Client) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("connection: dial %s: %w", c.addr, err)
	}
	c.conn = conn
	c.buf = c.buf[:0]
	return nil
}

// Do sends args as one command and returns the server's reply. Error
// replies are returned as values, not Go errors. A transport failure
// drops the connection; the next call redials.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, ErrNoCommand
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connect(ctx); err != nil {
		return resp.Value{}, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.drop()
		return resp.Value{}, fmt.Errorf("connection: set deadline: %w", err)
	}
	conn := c.conn
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	v, err := c.roundTrip(args)
	if err != nil {
		c.drop()
		if ctx.Err() != nil {
			return resp.Value{}, fmt.Errorf("connection: %w", ctx.Err())
		}
		return resp.Value{}, err
	}
	return v, nil
}

func (c *Client) roundTrip(args []string) (resp.Value, error) {
	if _, err := c.conn.Write(resp.EncodeCommand(args...)); err != nil {
		return resp.Value{}, fmt.Errorf("connection: write: %w", err)
	}

	chunk := make([]byte, readChunk)
	for {
		if len(c.buf) > 0 {
			v, next, err := resp.Decode(c.buf, 0)
			if err != nil {
				return resp.Value{}, fmt.Errorf("connection: %w", err)
			}
			if next > 0 {
				c.buf = c.buf[:copy(c.buf, c.buf[next:])]
				return v, nil
			}
		}
		if len(c.buf) >= MaxReplySize {
			return resp.Value{}, ErrReplyTooLarge
		}

		n, err := c.conn.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil && n == 0 {
			if errors.Is(err, io.EOF) {
				return resp.Value{}, fmt.Errorf("connection: server closed the connection: %w", err)
			}
			return resp.Value{}, fmt.Errorf("connection: read: %w", err)
		}
	}
}

func (c *Client) drop() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.buf = c.buf[:0]
}

// Close closes the connection, if any.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
