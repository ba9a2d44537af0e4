package pricing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleRates = `
models:
  claude-sonnet-4-5:
    input_per_1k: 0.003
    output_per_1k: 0.015
    aliases: [sonnet, default]
  gpt-5.2:
    input_per_1k: 0.0025
    output_per_1k: 0.010
`

func TestLoad(t *testing.T) {
	table, err := Load([]byte(sampleRates))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	r, err := table.Rate("claude-sonnet-4-5")
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if r.InputPer1K != 0.003 || r.OutputPer1K != 0.015 {
		t.Errorf("rate = %+v", r)
	}

	if _, err := table.Rate("default"); err != nil {
		t.Errorf("alias from file not registered: %v", err)
	}
	if _, err := table.Rate("gpt-5.2"); err != nil {
		t.Errorf("second model missing: %v", err)
	}
	if _, err := table.Rate("claude-opus-4-6"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("model outside the file resolved: %v", err)
	}
}

func TestLoadRejectsEmptyTable(t *testing.T) {
	if _, err := Load([]byte("models: {}")); err == nil {
		t.Error("empty rate table accepted")
	}
	if _, err := Load([]byte("not: [valid")); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte(sampleRates), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, err := table.Rate("sonnet"); err != nil {
		t.Errorf("Rate: %v", err)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
