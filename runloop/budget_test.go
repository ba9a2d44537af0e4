package runloop

import "testing"

func TestBudgetNormalized(t *testing.T) {
	b := Budget{}.normalized()
	if b.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", b.MaxIterations, DefaultMaxIterations)
	}
	if b.MaxOutputTokens != OutputTokenCeiling {
		t.Errorf("MaxOutputTokens = %d, want %d", b.MaxOutputTokens, OutputTokenCeiling)
	}

	b = Budget{MaxIterations: 3, MaxOutputTokens: 1000}.normalized()
	if b.MaxIterations != 3 || b.MaxOutputTokens != 1000 {
		t.Errorf("normalized overwrote explicit values: %+v", b)
	}
}

func TestOutputTokenBudget(t *testing.T) {
	cases := []struct {
		estimate int
		want     int
	}{
		{0, OutputTokenCeiling},    // no estimate gets the ceiling
		{-5, OutputTokenCeiling},   // garbage estimate gets the ceiling
		{1000, 2000},               // 2x headroom
		{4096, OutputTokenCeiling}, // exactly at the cap
		{5000, OutputTokenCeiling}, // capped
	}
	for _, tc := range cases {
		if got := OutputTokenBudget(tc.estimate); got != tc.want {
			t.Errorf("OutputTokenBudget(%d) = %d, want %d", tc.estimate, got, tc.want)
		}
	}
}
