package recap

import (
	"testing"

	"github.com/turnwise/recap/turns"
)

func TestEffectiveTurns(t *testing.T) {
	raw := []turns.Turn{
		turns.User{Text: "one"},
		turns.User{Text: "two"},
		turns.User{Text: "three"},
		turns.User{Text: "four"},
	}

	t.Run("no event returns raw history itself", func(t *testing.T) {
		st := NewSessionState("s1")
		got := st.EffectiveTurns(raw)
		if len(got) != len(raw) || &got[0] != &raw[0] {
			t.Error("expected the raw slice back unchanged")
		}
	})

	t.Run("event replaces the discarded head with its summary", func(t *testing.T) {
		summary := turns.User{Text: "earlier work condensed", Summary: true}
		st := &SessionState{
			SessionID:            "s1",
			LastEvent:            &Event{CutoffIndex: 2, Summary: summary},
			EstimationMultiplier: 1.0,
		}

		got := st.EffectiveTurns(raw)
		if len(got) != 3 {
			t.Fatalf("got %d turns, want 3 (summary + 2 kept)", len(got))
		}
		if got[0] != turns.Turn(summary) {
			t.Errorf("got %#v at index 0, want the summary turn", got[0])
		}
		if got[1] != raw[2] || got[2] != raw[3] {
			t.Error("kept turns should replay raw history from the cutoff")
		}
	})

	t.Run("cutoff at the end leaves only the summary", func(t *testing.T) {
		summary := turns.User{Text: "all of it", Summary: true}
		st := &SessionState{
			SessionID:            "s1",
			LastEvent:            &Event{CutoffIndex: 4, Summary: summary},
			EstimationMultiplier: 1.0,
		}

		got := st.EffectiveTurns(raw)
		if len(got) != 1 {
			t.Fatalf("got %d turns, want 1", len(got))
		}
	})
}

func TestAbsoluteCutoff(t *testing.T) {
	t.Run("without an event local is absolute", func(t *testing.T) {
		st := NewSessionState("s1")
		if got := st.absoluteCutoff(6); got != 6 {
			t.Errorf("got %d, want 6", got)
		}
	})

	t.Run("with an event the summary slot is skipped", func(t *testing.T) {
		st := &SessionState{
			SessionID:            "s1",
			LastEvent:            &Event{CutoffIndex: 6},
			EstimationMultiplier: 1.0,
		}
		// effective[7] is raw[12], so a local cutoff of 7 discards raw[6..11].
		if got := st.absoluteCutoff(7); got != 12 {
			t.Errorf("got %d, want 12", got)
		}
		// A local cutoff of 1 discards only the summary slot's range: the
		// absolute cutoff stays where it was.
		if got := st.absoluteCutoff(1); got != 6 {
			t.Errorf("got %d, want 6", got)
		}
	})
}

func TestTracker(t *testing.T) {
	t.Run("creates state on first use", func(t *testing.T) {
		tr := NewTracker()
		st := tr.Session("s1")
		if st == nil || st.SessionID != "s1" {
			t.Fatalf("got %+v, want fresh state for s1", st)
		}
		if st.EstimationMultiplier != 1.0 {
			t.Errorf("got multiplier %v, want 1.0", st.EstimationMultiplier)
		}
		if tr.Session("s1") != st {
			t.Error("second fetch should return the same state")
		}
		if tr.Len() != 1 {
			t.Errorf("got %d sessions, want 1", tr.Len())
		}
	})

	t.Run("lookup does not create", func(t *testing.T) {
		tr := NewTracker()
		if _, ok := tr.Lookup("missing"); ok {
			t.Error("lookup of an unknown session should miss")
		}
		if tr.Len() != 0 {
			t.Errorf("got %d sessions, want 0", tr.Len())
		}
	})

	t.Run("drop discards state", func(t *testing.T) {
		tr := NewTracker()
		st := tr.Session("s1")
		st.LastEvent = &Event{CutoffIndex: 3}
		tr.Drop("s1")

		if _, ok := tr.Lookup("s1"); ok {
			t.Error("dropped session should be gone")
		}
		if fresh := tr.Session("s1"); fresh.LastEvent != nil {
			t.Error("recreated session should start clean")
		}
	})
}
