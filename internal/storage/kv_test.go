package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// engines returns one fresh instance of every engine.
func engines(t *testing.T) map[string]KV {
	t.Helper()
	b, err := NewBadgerEngine(Config{DataDir: t.TempDir(), GCInterval: time.Hour}, quietLogger())
	if err != nil {
		t.Fatalf("NewBadgerEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return map[string]KV{
		EngineMemory: NewMemoryEngine(),
		EngineBadger: b,
	}
}

// ============================================================
// KV contract Tests
// ============================================================

func TestKV_SetGet(t *testing.T) {
	ctx := context.Background()
	for name, kv := range engines(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, []byte("k")); !errors.Is(err, ErrKeyNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrKeyNotFound", err)
			}

			val := []byte("v1")
			if err := kv.Set(ctx, []byte("k"), val); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			val[0] = 'X'
			got, err := kv.Get(ctx, []byte("k"))
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != "v1" {
				t.Errorf("Get() = %q, want v1 (stored value must not alias caller memory)", got)
			}

			if err := kv.Set(ctx, []byte("k"), []byte("v2")); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, _ = kv.Get(ctx, []byte("k"))
			if string(got) != "v2" {
				t.Errorf("Get() after overwrite = %q, want v2", got)
			}
		})
	}
}

func TestKV_EmptyValue(t *testing.T) {
	ctx := context.Background()
	for name, kv := range engines(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Set(ctx, []byte("empty"), []byte{}); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := kv.Get(ctx, []byte("empty"))
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Get() = %q, want empty", got)
			}
		})
	}
}

func TestKV_DeleteHasCount(t *testing.T) {
	ctx := context.Background()
	for name, kv := range engines(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"a", "b", "c"} {
				if err := kv.Set(ctx, []byte(k), []byte(k)); err != nil {
					t.Fatalf("Set(%s) error = %v", k, err)
				}
			}
			if n, err := kv.Count(ctx); err != nil || n != 3 {
				t.Fatalf("Count() = %d, %v; want 3, nil", n, err)
			}

			ok, err := kv.Delete(ctx, []byte("b"))
			if err != nil || !ok {
				t.Errorf("Delete(b) = %v, %v; want true, nil", ok, err)
			}
			ok, err = kv.Delete(ctx, []byte("b"))
			if err != nil || ok {
				t.Errorf("second Delete(b) = %v, %v; want false, nil", ok, err)
			}

			if has, _ := kv.Has(ctx, []byte("a")); !has {
				t.Error("Has(a) = false")
			}
			if has, _ := kv.Has(ctx, []byte("b")); has {
				t.Error("Has(b) after delete = true")
			}
			if n, _ := kv.Count(ctx); n != 2 {
				t.Errorf("Count() = %d, want 2", n)
			}
		})
	}
}

func TestKV_Closed(t *testing.T) {
	ctx := context.Background()
	for name, kv := range engines(t) {
		t.Run(name, func(t *testing.T) {
			if err := kv.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if err := kv.Close(); err != nil {
				t.Fatalf("second Close() error = %v", err)
			}
			if _, err := kv.Get(ctx, []byte("k")); !errors.Is(err, ErrClosed) {
				t.Errorf("Get() after Close error = %v, want ErrClosed", err)
			}
			if err := kv.Set(ctx, []byte("k"), nil); !errors.Is(err, ErrClosed) {
				t.Errorf("Set() after Close error = %v, want ErrClosed", err)
			}
		})
	}
}

// ============================================================
// Open Tests
// ============================================================

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr error
	}{
		{name: "default", cfg: Config{}, want: EngineMemory},
		{name: "memory", cfg: Config{Engine: EngineMemory}, want: EngineMemory},
		{name: "badger", cfg: Config{Engine: EngineBadger}, want: EngineBadger},
		{name: "unknown", cfg: Config{Engine: "rocks"}, wantErr: ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Engine == EngineBadger {
				tt.cfg.DataDir = t.TempDir()
			}
			kv, err := Open(tt.cfg, quietLogger(), prometheus.NewRegistry())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer kv.Close()

			switch kv.(type) {
			case *MemoryEngine:
				if tt.want != EngineMemory {
					t.Errorf("Open() = memory engine, want %s", tt.want)
				}
			case *BadgerEngine:
				if tt.want != EngineBadger {
					t.Errorf("Open() = badger engine, want %s", tt.want)
				}
			}
		})
	}
}

func TestOpen_BadgerRequiresDir(t *testing.T) {
	if _, err := Open(Config{Engine: EngineBadger}, quietLogger(), nil); err == nil {
		t.Fatal("Open(badger without dir) error = nil, want error")
	}
}
