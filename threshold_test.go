package recap

import (
	"errors"
	"testing"
)

func TestThresholdValidate(t *testing.T) {
	tests := []struct {
		name    string
		th      Threshold
		wantErr bool
	}{
		{"turn count", Turns(10), false},
		{"absolute size", Size(100_000), false},
		{"fraction", Fraction(0.8), false},
		{"fraction of one", Fraction(1.0), false},
		{"zero turns", Turns(0), true},
		{"zero size", Size(0), true},
		{"zero fraction", Fraction(0), true},
		{"fraction above one", Fraction(1.1), true},
		{"unknown kind", Threshold{Kind: "bytes", Value: 10}, true},
		{"unset kind", Threshold{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("got error %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v should wrap %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestThresholdBudget(t *testing.T) {
	t.Run("size resolves to its value", func(t *testing.T) {
		b, ok := Size(500).budget(0, false)
		if !ok || b != 500 {
			t.Errorf("got (%d, %v), want (500, true)", b, ok)
		}
	})

	t.Run("fraction resolves against the limit", func(t *testing.T) {
		b, ok := Fraction(0.25).budget(1_000, true)
		if !ok || b != 250 {
			t.Errorf("got (%d, %v), want (250, true)", b, ok)
		}
	})

	t.Run("fraction without a limit does not resolve", func(t *testing.T) {
		if _, ok := Fraction(0.25).budget(0, false); ok {
			t.Error("expected no budget without a known limit")
		}
	})

	t.Run("turn count is not a size budget", func(t *testing.T) {
		if _, ok := Turns(5).budget(1_000, true); ok {
			t.Error("expected no budget for a turn-count threshold")
		}
	})
}

func TestShouldCompact(t *testing.T) {
	tests := []struct {
		name       string
		turnCount  int
		estimated  int
		multiplier float64
		maxInput   int
		haveMax    bool
		triggers   []Threshold
		want       bool
	}{
		{
			name:      "no triggers never fires",
			turnCount: 1_000, estimated: 1_000_000, multiplier: 1.0,
			triggers: nil,
			want:     false,
		},
		{
			name:      "turn trigger fires at the threshold",
			turnCount: 10, estimated: 0, multiplier: 1.0,
			triggers: []Threshold{Turns(10)},
			want:     true,
		},
		{
			name:      "turn trigger below the threshold",
			turnCount: 9, estimated: 0, multiplier: 1.0,
			triggers: []Threshold{Turns(10)},
			want:     false,
		},
		{
			name:      "size trigger fires at the threshold",
			turnCount: 1, estimated: 500, multiplier: 1.0,
			triggers: []Threshold{Size(500)},
			want:     true,
		},
		{
			name:      "multiplier scales the estimate",
			turnCount: 1, estimated: 300, multiplier: 2.0,
			triggers: []Threshold{Size(500)},
			want:     true,
		},
		{
			name:      "fraction fires against the limit",
			turnCount: 1, estimated: 800, multiplier: 1.0,
			maxInput: 1_000, haveMax: true,
			triggers: []Threshold{Fraction(0.8)},
			want:     true,
		},
		{
			name:      "fraction inert without a limit",
			turnCount: 1, estimated: 10_000_000, multiplier: 1.0,
			triggers: []Threshold{Fraction(0.5)},
			want:     false,
		},
		{
			name:      "any trigger in the list fires",
			turnCount: 3, estimated: 999, multiplier: 1.0,
			triggers: []Threshold{Turns(100), Size(900)},
			want:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCompact(tt.turnCount, tt.estimated, tt.multiplier, tt.maxInput, tt.haveMax, tt.triggers)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestThresholdKindString(t *testing.T) {
	if got := ThresholdTurns.String(); got != "turns" {
		t.Errorf("got %q, want %q", got, "turns")
	}
	if got := ThresholdFraction.String(); got != "fraction" {
		t.Errorf("got %q, want %q", got, "fraction")
	}
}
