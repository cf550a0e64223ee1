package dex

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSpecies is returned when a species id is not in the dex.
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrUnknownMove is returned when a move id is not in the dex.
	ErrUnknownMove = errors.New("unknown move")
	// ErrUnknownNature is returned when a nature id is not in the dex.
	ErrUnknownNature = errors.New("unknown nature")
)

// LookupError reports a lookup miss against one of the dex tables.
type LookupError struct {
	Kind error
	ID   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%v %q", e.Kind, e.ID)
}

// Unwrap returns the kind sentinel so errors.Is matches ErrUnknownSpecies and friends.
func (e *LookupError) Unwrap() error { return e.Kind }
