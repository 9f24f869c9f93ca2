package recap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/turnwise/recap/backend/memory"
	"github.com/turnwise/recap/turns"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func archiveText(t *testing.T, b *memory.Backend, path string) string {
	t.Helper()
	data, err := b.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestOffloaderPathFor(t *testing.T) {
	o := NewOffloader(memory.New(), "offload", nil)
	if got := o.PathFor("s1"); got != "offload/s1.log" {
		t.Errorf("got %q, want %q", got, "offload/s1.log")
	}

	o = NewOffloader(memory.New(), "var/archive", nil)
	if got := o.PathFor("abc-123"); got != "var/archive/abc-123.log" {
		t.Errorf("got %q, want %q", got, "var/archive/abc-123.log")
	}
}

func TestOffloadAppendsTimestampedSection(t *testing.T) {
	mem := memory.New()
	o := &Offloader{backend: mem, prefix: "offload", now: fixedClock, log: noopLogger{}}

	discard := []turns.Turn{
		turns.User{Text: "first question"},
		turns.Agent{Text: "first answer"},
	}
	p, n, err := o.Offload(context.Background(), "s1", discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != "offload/s1.log" {
		t.Errorf("got path %q, want %q", p, "offload/s1.log")
	}

	data := archiveText(t, mem, p)
	if n != len(data) {
		t.Errorf("got %d bytes reported, want %d", n, len(data))
	}
	if !strings.HasPrefix(data, turns.SectionMarker) {
		t.Errorf("section should start with the marker, got %q", data)
	}
	if !strings.Contains(data, "2025-06-01T12:00:00Z") {
		t.Errorf("section header should carry the timestamp, got %q", data)
	}
	if !strings.Contains(data, "(2 turns)") {
		t.Errorf("section header should carry the turn count, got %q", data)
	}
	if !strings.Contains(data, "first question") || !strings.Contains(data, "first answer") {
		t.Errorf("section should carry the rendered turns, got %q", data)
	}
}

func TestOffloadAccumulatesSections(t *testing.T) {
	mem := memory.New()
	o := &Offloader{backend: mem, prefix: "offload", now: fixedClock, log: noopLogger{}}
	ctx := context.Background()

	if _, _, err := o.Offload(ctx, "s1", []turns.Turn{turns.User{Text: "round one"}}); err != nil {
		t.Fatalf("round 1: %v", err)
	}
	if _, _, err := o.Offload(ctx, "s1", []turns.Turn{turns.User{Text: "round two"}}); err != nil {
		t.Fatalf("round 2: %v", err)
	}

	data := archiveText(t, mem, "offload/s1.log")
	if got := strings.Count(data, turns.SectionMarker); got != 2 {
		t.Errorf("got %d sections, want 2", got)
	}
	if !strings.Contains(data, "round one") || !strings.Contains(data, "round two") {
		t.Errorf("both rounds should be present, got %q", data)
	}
	one := strings.Index(data, "round one")
	two := strings.Index(data, "round two")
	if one > two {
		t.Error("sections should accumulate in order")
	}
}

func TestOffloadFiltersEarlierSummaries(t *testing.T) {
	mem := memory.New()
	o := &Offloader{backend: mem, prefix: "offload", now: fixedClock, log: noopLogger{}}

	discard := []turns.Turn{
		turns.User{Text: "summary of rounds past", Summary: true},
		turns.User{Text: "real user words"},
	}
	if _, _, err := o.Offload(context.Background(), "s1", discard); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := archiveText(t, mem, "offload/s1.log")
	if strings.Contains(data, "summary of rounds past") {
		t.Errorf("archive must not contain earlier summary turns, got %q", data)
	}
	if !strings.Contains(data, "(1 turns)") {
		t.Errorf("turn count should reflect the filtered list, got %q", data)
	}
}

func TestOffloadAllSummariesWritesNothing(t *testing.T) {
	mem := memory.New()
	o := &Offloader{backend: mem, prefix: "offload", now: fixedClock, log: noopLogger{}}

	discard := []turns.Turn{turns.User{Text: "only a summary", Summary: true}}
	p, n, err := o.Offload(context.Background(), "s1", discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != "offload/s1.log" {
		t.Errorf("got path %q, want the deterministic path regardless", p)
	}
	if n != 0 {
		t.Errorf("got %d bytes reported, want 0", n)
	}
	if mem.Len() != 0 {
		t.Errorf("got %d archive entries, want 0", mem.Len())
	}
}

func TestOffloadWriteFailure(t *testing.T) {
	boom := errors.New("backend down")
	o := NewOffloader(&failBackend{err: boom}, "offload", nil)

	p, _, err := o.Offload(context.Background(), "s1", userTurns(2))
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
	if p != "" {
		t.Errorf("got path %q, want empty on failure", p)
	}
}
