package dex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// Species is the per-species reference row: base stats and types.
//
// Precondition: ID non-empty, every base stat >= 1, 1-2 types after loading.
type Species struct {
	ID    string
	Name  string
	Base  stats.Spread
	Types []string
}

type speciesRow struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	BaseStats map[string]int `yaml:"base_stats"`
	Types     []string       `yaml:"types"`
}

func (r speciesRow) toSpecies() (Species, error) {
	if r.ID == "" {
		return Species{}, fmt.Errorf("species %q: id must not be empty", r.Name)
	}
	base, err := stats.SpreadFromMap(r.BaseStats, 0)
	if err != nil {
		return Species{}, fmt.Errorf("species %s: %w", r.ID, err)
	}
	for _, s := range stats.All {
		if base[s] < 1 {
			return Species{}, fmt.Errorf("species %s: base %s must be >= 1, got %d", r.ID, s, base[s])
		}
	}
	if len(r.Types) < 1 || len(r.Types) > 2 {
		return Species{}, fmt.Errorf("species %s: must have 1 or 2 types, got %d", r.ID, len(r.Types))
	}
	types := make([]string, len(r.Types))
	for i, t := range r.Types {
		types[i] = stats.NormalizeName(t)
	}
	name := r.Name
	if name == "" {
		name = r.ID
	}
	return Species{ID: stats.NormalizeName(r.ID), Name: name, Base: base, Types: types}, nil
}

// LoadSpecies reads every .yaml file in dir; each file holds a list of species.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed species (may be empty) or a non-nil error.
func LoadSpecies(dir string) ([]Species, error) {
	var out []Species
	err := eachYAML(dir, func(path string, data []byte) error {
		var rows []speciesRow
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return fmt.Errorf("parsing species file %s: %w", path, err)
		}
		for _, row := range rows {
			sp, err := row.toSpecies()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out = append(out, sp)
		}
		return nil
	})
	return out, err
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}

func eachYAML(dir string, fn func(path string, data []byte) error) error {
	files, err := yamlFiles(dir)
	if err != nil {
		return err
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := fn(path, data); err != nil {
			return err
		}
	}
	return nil
}
