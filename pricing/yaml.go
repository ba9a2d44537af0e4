package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rateFile is the on-disk rate table layout:
//
//	models:
//	  claude-sonnet-4-5:
//	    input_per_1k: 0.003
//	    output_per_1k: 0.015
//	    aliases: [sonnet]
type rateFile struct {
	Models map[string]rateEntry `yaml:"models"`
}

type rateEntry struct {
	InputPer1K  float64  `yaml:"input_per_1k"`
	OutputPer1K float64  `yaml:"output_per_1k"`
	Aliases     []string `yaml:"aliases"`
}

// Load parses a YAML rate table.
func Load(data []byte) (*Table, error) {
	var file rateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("pricing: parse rate table: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("pricing: rate table defines no models")
	}

	rates := make(map[string]Rate, len(file.Models))
	for id, entry := range file.Models {
		rates[id] = Rate{InputPer1K: entry.InputPer1K, OutputPer1K: entry.OutputPer1K}
	}
	t := NewTable(rates)
	for id, entry := range file.Models {
		for _, alias := range entry.Aliases {
			t.AddAlias(alias, id)
		}
	}
	return t, nil
}

// LoadFile reads and parses a YAML rate table from path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pricing: read rate table: %w", err)
	}
	return Load(data)
}
