package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// DefaultPrompt is shown before every line.
const DefaultPrompt = "redif> "

// Executor runs one command line that has already been split.
type Executor func(ctx context.Context, args []string) error

// Config configures the REPL.
type Config struct {
	// Prompt defaults to DefaultPrompt.
	Prompt string
	// HistoryFile defaults to ~/.redif_history. "-" disables history.
	HistoryFile string
	// Stdout receives help text; Stderr receives errors.
	Stdout io.Writer
	Stderr io.Writer
}

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
	Close() error
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	rd     lineReader
	exec   Executor
	stdout io.Writer
	stderr io.Writer
}

// New creates a REPL reading from the terminal.
func New(cfg Config, exec Executor) (*REPL, error) {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	switch cfg.HistoryFile {
	case "":
		if home, err := os.UserHomeDir(); err == nil {
			cfg.HistoryFile = filepath.Join(home, ".redif_history")
		}
	case "-":
		cfg.HistoryFile = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cfg.Prompt,
		HistoryFile:       cfg.HistoryFile,
		HistoryLimit:      1000,
		HistorySearchFold: true,
		AutoComplete:      newCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("repl: init readline: %w", err)
	}
	return newREPL(rl, cfg, exec), nil
}

func newREPL(rd lineReader, cfg Config, exec Executor) *REPL {
	r := &REPL{rd: rd, exec: exec, stdout: cfg.Stdout, stderr: cfg.Stderr}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	return r
}

// Run reads and executes lines until exit, EOF or ctx is done. Command
// failures are printed and do not end the loop.
func (r *REPL) Run(ctx context.Context) error {
	defer r.rd.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := r.rd.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintf(r.stdout, "Commands: %s\n", strings.Join(Commands, ", "))
			continue
		}

		args, err := Split(line)
		if err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
			continue
		}
		if err := r.exec(ctx, args); err != nil {
			fmt.Fprintf(r.stderr, "Error: %v\n", err)
		}
	}
}
