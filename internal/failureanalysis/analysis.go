// Package failureanalysis turns ordering and selection failures into text a
// person can act on.
package failureanalysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anvil-platform/autoconfig/internal/selector"
	"github.com/anvil-platform/autoconfig/internal/sorter"
)

// Analysis describes what went wrong and what to change.
type Analysis struct {
	Description string
	Action      string
	Cause       error
}

func (a Analysis) String() string {
	var b strings.Builder
	b.WriteString("\n***************************\n")
	b.WriteString("AUTO-CONFIGURATION FAILED\n")
	b.WriteString("***************************\n\n")
	b.WriteString("Description:\n\n")
	b.WriteString(a.Description)
	b.WriteString("\n")
	if a.Action != "" {
		b.WriteString("\nAction:\n\n")
		b.WriteString(a.Action)
		b.WriteString("\n")
	}
	return b.String()
}

// Analyzer recognises one kind of failure.
type Analyzer func(err error) (Analysis, bool)

var defaultAnalyzers = []Analyzer{
	analyzeCycle,
	analyzeInvalidExclusions,
}

// Analyze runs the built-in analyzers followed by extra ones and returns the
// first analysis produced.
func Analyze(err error, extra ...Analyzer) (Analysis, bool) {
	if err == nil {
		return Analysis{}, false
	}
	for _, analyzer := range append(defaultAnalyzers, extra...) {
		if a, ok := analyzer(err); ok {
			a.Cause = err
			return a, true
		}
	}
	return Analysis{}, false
}

// Describe returns the analysis text for err, or err.Error() if no analyzer
// recognises it.
func Describe(err error) string {
	if a, ok := Analyze(err); ok {
		return a.String()
	}
	return err.Error()
}

func analyzeCycle(err error) (Analysis, bool) {
	var cycle *sorter.CycleError
	if !errors.As(err, &cycle) {
		return Analysis{}, false
	}
	return Analysis{
		Description: fmt.Sprintf(
			"The ordering declarations of the auto-configurations form a cycle:\n\n"+
				"   %s must be imported after %s, which is itself waiting on %s.",
			cycle.Current, cycle.After, cycle.Current),
		Action: fmt.Sprintf(
			"Remove the before/after declaration between %s and %s, or the declaration of an "+
				"auto-configuration in between that closes the loop.",
			cycle.Current, cycle.After),
	}, true
}

func analyzeInvalidExclusions(err error) (Analysis, bool) {
	var invalid *selector.InvalidExclusionsError
	if !errors.As(err, &invalid) {
		return Analysis{}, false
	}
	var b strings.Builder
	b.WriteString("The following names could not be excluded because they are not auto-configuration candidates:\n")
	for _, name := range invalid.Names {
		fmt.Fprintf(&b, "\n   - %s", name)
	}
	return Analysis{
		Description: b.String(),
		Action:      "Check the exclusion list and the " + selector.ExcludeProperty + " property for library names used in place of auto-configuration names.",
	}, true
}
