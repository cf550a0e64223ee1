package dex

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// LoadNatures parses a YAML list of natures.
//
// Precondition: path must name a readable file.
// Postcondition: Returns the natures with normalised names, or a non-nil error.
func LoadNatures(path string) ([]stats.Nature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var natures []stats.Nature
	if err := yaml.Unmarshal(data, &natures); err != nil {
		return nil, fmt.Errorf("parsing nature file %s: %w", path, err)
	}
	for i := range natures {
		n := &natures[i]
		if n.Name == "" {
			return nil, fmt.Errorf("%s: nature %d: name must not be empty", path, i)
		}
		n.Name = stats.NormalizeName(n.Name)
		if !n.IsNeutral() && (n.Boosted == stats.HP || n.Reduced == stats.HP) {
			return nil, fmt.Errorf("%s: nature %s must not affect hp", path, n.Name)
		}
		if n.IsNeutral() {
			*n = stats.Neutral(n.Name)
		}
	}
	return natures, nil
}
