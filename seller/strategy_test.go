// Copyright (c) 2026 BVK Chaitanya

package seller

import (
	"testing"
)

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"UNDERCUT", "MATCH", "FIXED-MARGIN", "DYNAMIC"} {
		if _, err := ParseStrategy(name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if _, err := ParseStrategy("undercut"); err == nil {
		t.Fatalf("lowercase strategy name must be rejected")
	}
	if _, err := ParseStrategy("AGGRESSIVE"); err == nil {
		t.Fatalf("unknown strategy name must be rejected")
	}
}

func TestComputePrice(t *testing.T) {
	tests := []struct {
		strategy  Strategy
		buy, best int64
		margin    int64
		want      int64
	}{
		// Undercut goes one minor unit below the best competitor.
		{Undercut, 500, 650, 1000, 649},
		// Match lists at the best competitor.
		{Match, 500, 650, 1000, 650},
		// Fixed margin ignores competitors: 500 × 1.10 = 550.
		{FixedMargin, 500, 650, 1000, 550},
		// Dynamic undercuts but not below the fixed-margin price.
		{Dynamic, 500, 650, 1000, 649},
		{Dynamic, 500, 520, 1000, 550},
		// No competitor: everything falls back to the margin price.
		{Undercut, 500, 0, 1000, 550},
		{Match, 500, 0, 1000, 550},
		{Dynamic, 500, 0, 1000, 550},
	}
	for _, test := range tests {
		got := computePrice(test.strategy, test.buy, test.best, test.margin, 200)
		if got != test.want {
			t.Fatalf("%s(buy=%d best=%d margin=%d) = %d, want %d",
				test.strategy, test.buy, test.best, test.margin, got, test.want)
		}
	}
}

func TestMinMarginClamp(t *testing.T) {
	// Bought at 1000 with the competitor at 1001: a raw undercut would
	// list at cost, so the 2% floor lifts it to 1020.
	got := computePrice(Undercut, 1000, 1001, 1000, 200)
	if got != 1020 {
		t.Fatalf("clamped price = %d, want 1020", got)
	}

	// The floor holds for every strategy and any competitor price.
	for _, strategy := range []Strategy{Undercut, Match, FixedMargin, Dynamic} {
		for _, best := range []int64{0, 1, 500, 999, 1000, 1001, 2000} {
			floor := marginPrice(1000, 200)
			if got := computePrice(strategy, 1000, best, 1000, 200); got < floor {
				t.Fatalf("%s(best=%d) = %d is below the floor %d", strategy, best, got, floor)
			}
		}
	}
}

func TestMarginPriceRoundsUp(t *testing.T) {
	if got := marginPrice(999, 200); got != 1019 {
		// 999 × 1.02 = 1018.98 rounds up.
		t.Fatalf("marginPrice(999, 200) = %d, want 1019", got)
	}
	if got := marginPrice(1000, 200); got != 1020 {
		t.Fatalf("marginPrice(1000, 200) = %d, want 1020", got)
	}
}
