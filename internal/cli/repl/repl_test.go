package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/chzyer/readline"
)

// scriptReader replays lines, then returns end.
type scriptReader struct {
	lines  []string
	end    error
	closed bool
}

func (s *scriptReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", s.end
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptReader) Close() error {
	s.closed = true
	return nil
}

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func run(t *testing.T, rd *scriptReader, rec *recorder) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	r := newREPL(rd, Config{Stdout: &out, Stderr: &errOut}, rec.exec)
	err = r.Run(context.Background())
	if !rd.closed {
		t.Error("reader not closed")
	}
	return out.String(), errOut.String(), err
}

func TestREPL_ExecutesLines(t *testing.T) {
	rd := &scriptReader{lines: []string{"SET k v", "", "  GET k  ", `ECHO "a b"`}, end: io.EOF}
	rec := &recorder{}

	if _, _, err := run(t, rd, rec); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := [][]string{{"SET", "k", "v"}, {"GET", "k"}, {"ECHO", "a b"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
}

func TestREPL_Exit(t *testing.T) {
	for _, word := range []string{"exit", "quit", "QUIT"} {
		t.Run(word, func(t *testing.T) {
			rd := &scriptReader{lines: []string{"PING", word, "PING"}, end: io.EOF}
			rec := &recorder{}
			if _, _, err := run(t, rd, rec); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(rec.calls) != 1 {
				t.Errorf("executed %d commands, want 1", len(rec.calls))
			}
		})
	}
}

func TestREPL_ErrorsDoNotStopLoop(t *testing.T) {
	rd := &scriptReader{lines: []string{`GET "open`, "PING", "PING"}, end: io.EOF}
	rec := &recorder{err: errors.New("connection refused")}

	_, stderr, err := run(t, rd, rec)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 2 {
		t.Errorf("executed %d commands, want 2", len(rec.calls))
	}
	if !strings.Contains(stderr, "unbalanced quotes") || strings.Count(stderr, "connection refused") != 2 {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestREPL_Help(t *testing.T) {
	rd := &scriptReader{lines: []string{"help"}, end: io.EOF}
	rec := &recorder{}
	stdout, _, _ := run(t, rd, rec)
	if !strings.Contains(stdout, "DBSIZE") {
		t.Errorf("help output = %q", stdout)
	}
	if len(rec.calls) != 0 {
		t.Error("help should not reach the executor")
	}
}

func TestREPL_Interrupt(t *testing.T) {
	rd := &interruptOnce{scriptReader: scriptReader{lines: []string{"PING"}, end: io.EOF}}
	rec := &recorder{}
	r := newREPL(rd, Config{Stdout: io.Discard, Stderr: io.Discard}, rec.exec)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !rd.fired || len(rec.calls) != 1 {
		t.Errorf("fired = %v, executed %d commands; want true, 1", rd.fired, len(rec.calls))
	}
}

// interruptOnce reports ^C before replaying its script.
type interruptOnce struct {
	scriptReader
	fired bool
}

func (r *interruptOnce) Readline() (string, error) {
	if !r.fired {
		r.fired = true
		return "", readline.ErrInterrupt
	}
	return r.scriptReader.Readline()
}

func TestREPL_ReaderError(t *testing.T) {
	boom := errors.New("tty gone")
	rd := &scriptReader{end: boom}
	if _, _, err := run(t, rd, &recorder{}); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestREPL_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rd := &scriptReader{lines: []string{"PING"}, end: io.EOF}
	rec := &recorder{}
	r := newREPL(rd, Config{Stdout: io.Discard, Stderr: io.Discard}, rec.exec)
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Error("no command should run after cancel")
	}
}
