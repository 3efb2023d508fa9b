package selector

import (
	"fmt"
	"strings"
)

// InvalidExclusionsError reports exclusions that name something present in the
// environment that is not an auto-configuration candidate, which almost always
// means a typo or a library name used where a candidate name was meant.
type InvalidExclusionsError struct {
	Names []string
}

func (e *InvalidExclusionsError) Error() string {
	return fmt.Sprintf("the following names could not be excluded because they are not auto-configuration candidates: %s",
		strings.Join(e.Names, ", "))
}
