package redif

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/yndnr/redif-go/pkg/frame"
	"github.com/yndnr/redif-go/pkg/resp"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Network != "tcp" {
		t.Errorf("Network = %q, want tcp", cfg.Network)
	}
	if cfg.ReadBufferSize != frame.DefaultCapacity {
		t.Errorf("ReadBufferSize = %d, want %d", cfg.ReadBufferSize, frame.DefaultCapacity)
	}
	if cfg.PollTimeout != 5*time.Second {
		t.Errorf("PollTimeout = %v, want 5s", cfg.PollTimeout)
	}
	if cfg.EventQueueSize != DefaultEventQueueSize {
		t.Errorf("EventQueueSize = %d, want %d", cfg.EventQueueSize, DefaultEventQueueSize)
	}
	if cfg.Lock == nil || cfg.Logger == nil {
		t.Error("Lock and Logger must default to non-nil")
	}
}

func TestConfig_KeepsExplicitValues(t *testing.T) {
	lock := &sync.Mutex{}
	cfg := Config{Addr: "127.0.0.1:1", ReadBufferSize: 64, Lock: lock}.withDefaults()
	if cfg.Addr != "127.0.0.1:1" || cfg.ReadBufferSize != 64 || cfg.Lock != lock {
		t.Errorf("withDefaults() overwrote explicit values: %+v", cfg)
	}
}

func TestHandlerFunc(t *testing.T) {
	h := HandlerFunc(func(req resp.Value) (resp.Value, bool) {
		return resp.IntValue(int64(len(req.Array()))), true
	})
	reply, ok := h.Handle(resp.BulkValue(resp.StringValue("a"), resp.StringValue("b")))
	if !ok || !reply.Equal(resp.IntValue(2)) {
		t.Errorf("Handle() = %v, %v; want int(2), true", reply, ok)
	}
}

func TestCloseReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "end of stream", err: frame.ErrEndOfStream, want: ReasonEOF},
		{name: "raw EOF", err: io.EOF, want: ReasonEOF},
		{name: "protocol", err: fmt.Errorf("%w: bad marker", resp.ErrProtocol), want: ReasonProtocol},
		{name: "length", err: resp.ErrLengthOutOfRange, want: ReasonProtocol},
		{name: "frame too large", err: frame.ErrFrameTooLarge, want: ReasonFrameTooLarge},
		{name: "panic", err: fmt.Errorf("%w: boom", ErrHandlerPanic), want: ReasonHandlerPanic},
		{name: "reset", err: syscall.ECONNRESET, want: ReasonIO},
		{name: "other", err: errors.New("x"), want: ReasonIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := closeReason(tt.err); got != tt.want {
				t.Errorf("closeReason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.accepted()
	m.closed(ReasonEOF)
	m.read(10)
	m.written(10)
	m.batch(1, 1, time.Millisecond)
}

func TestMetrics_UnregisteredWhenNilRegisterer(t *testing.T) {
	a := NewMetrics(nil)
	b := NewMetrics(nil)
	if a == nil || b == nil {
		t.Fatal("NewMetrics(nil) = nil")
	}
	a.accepted()
}

func TestConnState_String(t *testing.T) {
	tests := map[connState]string{
		stateRegistered: "registered",
		stateReading:    "reading",
		stateWriting:    "writing",
		stateClosed:     "closed",
		connState(99):   "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("connState(%d).String() = %q, want %q", s, got, want)
		}
	}
}
