package overlap

import "errors"

var (
	// ErrInvalidEntity marks an input record that cannot take part in analysis.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrInconsistentIndex means a ranked fragment names an entity missing from the input.
	ErrInconsistentIndex = errors.New("overlap index references unknown entity")
)
