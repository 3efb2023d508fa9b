package sorter

import (
	"errors"
	"fmt"
)

// ErrCycle matches any *CycleError with errors.Is.
var ErrCycle = errors.New("auto-configuration cycle")

// CycleError reports that Current had to be placed after After while After was
// itself still waiting on Current. Removing either ordering declaration between
// the two breaks the cycle.
type CycleError struct {
	Current string
	After   string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("auto-configuration cycle detected between %s and %s", e.Current, e.After)
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
