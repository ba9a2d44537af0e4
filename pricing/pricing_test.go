package pricing

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestCost(t *testing.T) {
	table := NewTable(map[string]Rate{
		"test-model": {InputPer1K: 0.003, OutputPer1K: 0.015},
	})

	cost, err := table.Cost("test-model", 2000, 1000)
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if want := 0.021; !almostEqual(cost, want) {
		t.Errorf("cost = %v, want %v", cost, want)
	}

	cost, err = table.Cost("test-model", 0, 0)
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != 0 {
		t.Errorf("zero-token cost = %v", cost)
	}
}

func TestUnknownModelFailsLoudly(t *testing.T) {
	table := NewTable(map[string]Rate{"known": {InputPer1K: 1, OutputPer1K: 1}})

	_, err := table.Cost("unknown-model", 100, 100)
	if err == nil {
		t.Fatal("unknown model did not error")
	}
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("err = %v, want ErrUnknownModel", err)
	}
}

func TestAliases(t *testing.T) {
	table := NewTable(map[string]Rate{"long-model-id": {InputPer1K: 0.001, OutputPer1K: 0.002}})
	table.AddAlias("short", "long-model-id")

	direct, err := table.Rate("long-model-id")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	viaAlias, err := table.Rate("short")
	if err != nil {
		t.Fatalf("Rate via alias: %v", err)
	}
	if direct != viaAlias {
		t.Errorf("alias rate %+v differs from direct %+v", viaAlias, direct)
	}

	if _, err := table.Rate("dangling"); err == nil {
		t.Error("unregistered alias resolved")
	}
}

func TestDefaultTable(t *testing.T) {
	table := Default()

	for _, id := range []string{"claude-opus-4-6", "claude-sonnet-4-5", "gpt-5.2", "gemini-3-pro-preview"} {
		if _, err := table.Rate(id); err != nil {
			t.Errorf("default table missing %s: %v", id, err)
		}
	}
	for _, alias := range []string{"opus", "sonnet", "gpt5"} {
		if _, err := table.Rate(alias); err != nil {
			t.Errorf("default table missing alias %s: %v", alias, err)
		}
	}

	// Sanity: output always costs at least as much as input.
	for _, id := range table.Models() {
		r, err := table.Rate(id)
		if err != nil {
			t.Fatalf("Rate(%s): %v", id, err)
		}
		if r.OutputPer1K < r.InputPer1K {
			t.Errorf("%s: output rate %v below input rate %v", id, r.OutputPer1K, r.InputPer1K)
		}
	}
}
