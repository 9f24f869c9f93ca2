package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/turnwise/recap/backend"
)

func TestWriteReadReplace(t *testing.T) {
	b := New()
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
	b := New()
	_, err := b.Read(context.Background(), "offload/absent.log")
	if !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestAppendAccumulates(t *testing.T) {
	b := New()
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
	b := New()
	ctx := context.Background()

	if err := b.Write(ctx, "", []byte("x")); !errors.Is(err, backend.ErrInvalidPath) {
		t.Errorf("write: got %v, want ErrInvalidPath", err)
	}
	if err := b.Append(ctx, "", []byte("x")); !errors.Is(err, backend.ErrInvalidPath) {
		t.Errorf("append: got %v, want ErrInvalidPath", err)
	}
}

func TestCopiesIsolateCallers(t *testing.T) {
	b := New()
	ctx := context.Background()

	in := []byte("stable")
	if err := b.Write(ctx, "k", in); err != nil {
		t.Fatalf("write: %v", err)
	}
	in[0] = 'X'

	got, err := b.Read(ctx, "k")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "stable" {
		t.Errorf("stored data mutated through caller slice: %q", got)
	}

	got[0] = 'Y'
	again, err := b.Read(ctx, "k")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if string(again) != "stable" {
		t.Errorf("stored data mutated through returned slice: %q", again)
	}
}

func TestList(t *testing.T) {
	b := New()
	ctx := context.Background()

	for _, p := range []string{"offload/s2.log", "offload/s1.log", "offloads/other.log", "misc.txt"} {
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

	all, err := b.List(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d paths, want 4", len(all))
	}
}

func TestPrune(t *testing.T) {
	b := New()
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

func TestCancelledContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.Write(ctx, "k", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("write: got %v, want context.Canceled", err)
	}
	if _, err := b.List(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("list: got %v, want context.Canceled", err)
	}
}
