package frame

import (
	"bytes"
	"errors"
	"io"
	"syscall"
	"testing"
)

// limitedSink accepts at most room bytes per call sequence, then blocks
// until drained.
type limitedSink struct {
	bytes.Buffer
	room int
	err  error
}

func (s *limitedSink) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.room == 0 {
		return 0, syscall.EAGAIN
	}
	n := len(p)
	if n > s.room {
		n = s.room
	}
	s.room -= n
	s.Buffer.Write(p[:n])
	return n, nil
}

func TestWriter_WriteAll(t *testing.T) {
	w := NewWriter()
	sink := &limitedSink{room: 1 << 20}

	n, err := w.Write(sink, []byte("+OK\r\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 5 || sink.String() != "+OK\r\n" {
		t.Errorf("Write() = %d, sink %q", n, sink.String())
	}
	if w.Pending() != 0 || w.Len() != 0 {
		t.Errorf("Pending() = %d, Len() = %d; want 0, 0", w.Pending(), w.Len())
	}
}

func TestWriter_PartialThenDrain(t *testing.T) {
	w := NewWriter()
	sink := &limitedSink{room: 7}

	n, err := w.Write(sink, []byte("+Hello\r\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 7 {
		t.Errorf("Write() = %d, want 7", n)
	}
	n, err = w.Write(sink, []byte(":1\r\n"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 0 {
		t.Errorf("blocked Write() = %d, want 0", n)
	}
	if w.Pending() != 5 || w.Len() != 2 {
		t.Fatalf("Pending() = %d, Len() = %d; want 5, 2", w.Pending(), w.Len())
	}

	// Write-ready notification: drain with no new data.
	sink.room = 3
	if n, err = w.Write(sink, nil); err != nil || n != 3 {
		t.Fatalf("drain Write() = %d, %v; want 3, nil", n, err)
	}
	sink.room = 100
	if n, err = w.Flush(sink); err != nil || n != 2 {
		t.Fatalf("Flush() = %d, %v; want 2, nil", n, err)
	}
	if got := sink.String(); got != "+Hello\r\n:1\r\n" {
		t.Errorf("sink = %q", got)
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", w.Pending())
	}
}

func TestWriter_FlushEmpty(t *testing.T) {
	w := NewWriter()
	for i := 0; i < 3; i++ {
		if n, err := w.Flush(&limitedSink{}); err != nil || n != 0 {
			t.Fatalf("Flush() = %d, %v; want 0, nil", n, err)
		}
	}
}

func TestWriter_Error(t *testing.T) {
	boom := errors.New("broken pipe")
	w := NewWriter()
	_, err := w.Write(&limitedSink{err: boom}, []byte("+OK\r\n"))
	if !errors.Is(err, boom) {
		t.Fatalf("Write() error = %v, want %v", err, boom)
	}
	if w.Pending() != 5 {
		t.Errorf("Pending() = %d, want 5", w.Pending())
	}
}

type zeroSink struct{}

func (zeroSink) Write([]byte) (int, error) { return 0, nil }

func TestWriter_ZeroProgress(t *testing.T) {
	w := NewWriter()
	if _, err := w.Write(zeroSink{}, []byte("x")); !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("Write() error = %v, want io.ErrShortWrite", err)
	}
}

func TestWriter_QueueIgnoresEmpty(t *testing.T) {
	w := NewWriter()
	w.Queue(nil)
	w.Queue([]byte{})
	if w.Len() != 0 {
		t.Errorf("Len() = %d, want 0", w.Len())
	}
}

// trickleSink accepts at most step bytes per call without error, the way a
// socket may report a short write while still having room.
type trickleSink struct {
	bytes.Buffer
	step  int
	calls int
}

func (s *trickleSink) Write(p []byte) (int, error) {
	s.calls++
	if len(p) > s.step {
		p = p[:s.step]
	}
	return s.Buffer.Write(p)
}

func TestWriter_ShortWritesContinue(t *testing.T) {
	w := NewWriter()
	sink := &trickleSink{step: 3}
	w.Queue([]byte("+OK\r\n"))
	w.Queue([]byte(":4400\r\n"))

	n, err := w.Flush(sink)
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if n != 12 || sink.String() != "+OK\r\n:4400\r\n" {
		t.Errorf("Flush() = %d, sink %q", n, sink.String())
	}
	if w.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", w.Pending())
	}
	if sink.calls < 4 {
		t.Errorf("sink called %d times, want the flush to keep going after short writes", sink.calls)
	}
}
