package dex

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/evspread/internal/game/damage"
	"github.com/cory-johannsen/evspread/internal/game/stats"
)

// LoadMoves reads every .yaml file in dir; each file holds a list of moves.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed moves with normalised names and types, or a non-nil error.
func LoadMoves(dir string) ([]damage.Move, error) {
	var out []damage.Move
	err := eachYAML(dir, func(path string, data []byte) error {
		var moves []damage.Move
		if err := yaml.Unmarshal(data, &moves); err != nil {
			return fmt.Errorf("parsing move file %s: %w", path, err)
		}
		for _, m := range moves {
			m.Name = stats.NormalizeName(m.Name)
			m.Type = stats.NormalizeName(m.Type)
			if err := m.Validate(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			out = append(out, m)
		}
		return nil
	})
	return out, err
}
