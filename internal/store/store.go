// Package store implements a small key-value command set on top of a
// storage.KV engine. It is the request handler of redif-server.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yndnr/redif-go/internal/storage"
	"github.com/yndnr/redif-go/pkg/resp"
)

// Error replies.
const (
	ErrInvalidRequest = "Invalid Request"
	ErrTooFewArgs     = "too few arguments"
)

type command struct {
	minArgs int
	run     func(s *Store, ctx context.Context, args []resp.Value) resp.Value
}

var commands = map[string]command{
	"PING":   {minArgs: 0, run: (*Store).ping},
	"ECHO":   {minArgs: 1, run: (*Store).echo},
	"SET":    {minArgs: 2, run: (*Store).set},
	"GET":    {minArgs: 1, run: (*Store).get},
	"DEL":    {minArgs: 1, run: (*Store).del},
	"EXISTS": {minArgs: 1, run: (*Store).exists},
	"DBSIZE": {minArgs: 0, run: (*Store).dbsize},
}

// Store answers PING, ECHO, SET, GET, DEL, EXISTS and DBSIZE.
type Store struct {
	kv     storage.KV
	logger *slog.Logger
}

// New creates a Store backed by kv.
func New(kv storage.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Handle executes one request. Every request gets a reply.
func (s *Store) Handle(req resp.Value) (resp.Value, bool) {
	return s.Do(context.Background(), req), true
}

// Do executes one request with ctx passed to the storage engine.
func (s *Store) Do(ctx context.Context, req resp.Value) resp.Value {
	if req.Kind() != resp.KindBulk {
		return resp.ErrorValue(ErrInvalidRequest)
	}
	args := req.Array()
	if len(args) == 0 {
		return resp.NilValue()
	}
	name, err := args[0].Text()
	if errors.Is(err, resp.ErrNotText) {
		// Nil and nested arrays carry no command name.
		return resp.NilValue()
	}
	if err != nil {
		s.logger.Debug("invalid command", "command", args[0].String(), "error", err)
		return resp.ErrorValue(ErrInvalidRequest)
	}
	name = strings.ToUpper(name)

	cmd, ok := commands[name]
	if !ok {
		return resp.ErrorValue("invalid command : " + name)
	}
	if len(args)-1 < cmd.minArgs {
		return resp.ErrorValue(ErrTooFewArgs)
	}
	return cmd.run(s, ctx, args[1:])
}

func (s *Store) ping(_ context.Context, args []resp.Value) resp.Value {
	if len(args) == 0 {
		return resp.StringValue("PONG")
	}
	parts := make([][]byte, len(args))
	for i, a := range args {
		parts[i] = a.Bytes()
	}
	return resp.DataValue(joinBytes(parts, ' '))
}

func (s *Store) echo(_ context.Context, args []resp.Value) resp.Value {
	if args[0].Kind() != resp.KindData {
		return badRequest("ECHO", args)
	}
	return args[0]
}

func (s *Store) set(ctx context.Context, args []resp.Value) resp.Value {
	key, errv, ok := s.textArg("SET", args, 0)
	if !ok {
		return errv
	}
	val, errv, ok := s.textArg("SET", args, 1)
	if !ok {
		return errv
	}
	if err := s.kv.Set(ctx, []byte(key), []byte(val)); err != nil {
		return s.storageError("SET", err)
	}
	return resp.StatusValue("OK")
}

func (s *Store) get(ctx context.Context, args []resp.Value) resp.Value {
	key, errv, ok := s.textArg("GET", args, 0)
	if !ok {
		return errv
	}
	val, err := s.kv.Get(ctx, []byte(key))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return resp.NilValue()
	}
	if err != nil {
		return s.storageError("GET", err)
	}
	return resp.DataValue(val)
}

func (s *Store) del(ctx context.Context, args []resp.Value) resp.Value {
	var n int64
	for i := range args {
		key, errv, ok := s.textArg("DEL", args, i)
		if !ok {
			return errv
		}
		deleted, err := s.kv.Delete(ctx, []byte(key))
		if err != nil {
			return s.storageError("DEL", err)
		}
		if deleted {
			n++
		}
	}
	return resp.IntValue(n)
}

func (s *Store) exists(ctx context.Context, args []resp.Value) resp.Value {
	var n int64
	for i := range args {
		key, errv, ok := s.textArg("EXISTS", args, i)
		if !ok {
			return errv
		}
		found, err := s.kv.Has(ctx, []byte(key))
		if err != nil {
			return s.storageError("EXISTS", err)
		}
		if found {
			n++
		}
	}
	return resp.IntValue(n)
}

func (s *Store) dbsize(ctx context.Context, _ []resp.Value) resp.Value {
	n, err := s.kv.Count(ctx)
	if err != nil {
		return s.storageError("DBSIZE", err)
	}
	return resp.IntValue(int64(n))
}

// textArg returns args[i] as UTF-8 text. Keys and values must be Data.
func (s *Store) textArg(cmd string, args []resp.Value, i int) (string, resp.Value, bool) {
	if args[i].Kind() != resp.KindData {
		return "", badRequest(cmd, args), false
	}
	text, err := args[i].Text()
	if err != nil {
		s.logger.Debug("bad request", "command", cmd, "args", formatArgs(args), "error", err)
		return "", resp.ErrorValue("bad request : " + formatArgs(args)), false
	}
	return text, resp.Value{}, true
}

func (s *Store) storageError(cmd string, err error) resp.Value {
	s.logger.Error("storage failure", "command", cmd, "error", err)
	return resp.ErrorValue(fmt.Sprintf("storage error : %v", err))
}

func badRequest(cmd string, args []resp.Value) resp.Value {
	return resp.ErrorValue(fmt.Sprintf("bad request %s %s", cmd, formatArgs(args)))
}

func formatArgs(args []resp.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func joinBytes(parts [][]byte, sep byte) []byte {
	size := len(parts) - 1
	for _, p := range parts {
		size += len(p)
	}
	out := make([]byte, 0, size)
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p...)
	}
	return out
}
