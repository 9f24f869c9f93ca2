package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/turnwise/recap/backend"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(filepath.Join(t.TempDir(), "recap.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestWriteReadReplace(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Write(ctx, "offload/s1.log", []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := b.Write(ctx, "offload/s1.log", []byte("second")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	got, err := b.Read(ctx, "offload/s1.log")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}

func TestReadMissing(t *testing.T) {
	b := newTestBackend(t)
	_, err := b.Read(context.Background(), "offload/absent.log")
	if !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestAppendAccumulates(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Append(ctx, "offload/s1.log", []byte("one\n")); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := b.Append(ctx, "offload/s1.log", []byte("two\n")); err != nil {
		t.Fatalf("second append: %v", err)
	}
	got, err := b.Read(ctx, "offload/s1.log")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "one\ntwo\n" {
		t.Errorf("got %q, want %q", got, "one\ntwo\n")
	}
}

func TestEmptyPathRejected(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	if err := b.Write(ctx, "", []byte("x")); !errors.Is(err, backend.ErrInvalidPath) {
		t.Errorf("write: got %v, want ErrInvalidPath", err)
	}
	if err := b.Append(ctx, "", []byte("x")); !errors.Is(err, backend.ErrInvalidPath) {
		t.Errorf("append: got %v, want ErrInvalidPath", err)
	}
}

func TestList(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	for _, p := range []string{"offload/s2.log", "offload/s1.log", "other/x.log"} {
		if err := b.Write(ctx, p, []byte("x")); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	got, err := b.List(ctx, "offload")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"offload/s1.log", "offload/s2.log"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListEscapesWildcards(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	for _, p := range []string{"s_1/a.log", "sX1/a.log"} {
		if err := b.Write(ctx, p, []byte("x")); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	got, err := b.List(ctx, "s_1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0] != "s_1/a.log" {
		t.Errorf("underscore in prefix matched as wildcard: %v", got)
	}
}

func TestPrune(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return current }

	if err := b.Write(ctx, "offload/old.log", []byte("x")); err != nil {
		t.Fatalf("write old: %v", err)
	}
	current = current.Add(48 * time.Hour)
	if err := b.Write(ctx, "offload/new.log", []byte("x")); err != nil {
		t.Fatalf("write new: %v", err)
	}

	removed, err := b.Prune(ctx, "offload", current.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("got %d removed, want 1", removed)
	}
	if _, err := b.Read(ctx, "offload/old.log"); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("old entry survived prune: %v", err)
	}
	if _, err := b.Read(ctx, "offload/new.log"); err != nil {
		t.Errorf("recent entry pruned: %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recap.db")
	ctx := context.Background()

	b, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := b.Append(ctx, "offload/s1.log", []byte("durable")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b2, err := New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer b2.Close()
	got, err := b2.Read(ctx, "offload/s1.log")
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if string(got) != "durable" {
		t.Errorf("got %q, want %q", got, "durable")
	}
}

func TestCancelledContext(t *testing.T) {
	b := newTestBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Write(ctx, "k", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("write: got %v, want context.Canceled", err)
	}
}
