package condition

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Report collects condition outcomes, exclusions and unconditional candidates for
// one selection run.
type Report struct {
	mu            sync.Mutex
	outcomes      map[string]Outcome
	exclusions    sets.Set[string]
	unconditional sets.Set[string]
}

func NewReport() *Report {
	return &Report{
		outcomes:      map[string]Outcome{},
		exclusions:    sets.New[string](),
		unconditional: sets.New[string](),
	}
}

func (r *Report) Record(name string, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.Messages = slices.Clone(o.Messages)
	r.outcomes[name] = o
}

func (r *Report) RecordExclusions(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exclusions.Insert(names...)
}

func (r *Report) RecordUnconditional(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unconditional.Insert(names...)
}

func (r *Report) Outcome(name string) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.outcomes[name]
	return o, ok
}

// Matched returns the names whose conditions matched, sorted.
func (r *Report) Matched() []string {
	return r.filter(true)
}

// Unmatched returns the names whose conditions did not match, sorted.
func (r *Report) Unmatched() []string {
	return r.filter(false)
}

func (r *Report) Exclusions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sets.List(r.exclusions)
}

func (r *Report) Unconditional() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sets.List(r.unconditional)
}

func (r *Report) filter(match bool) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.outcomes))
	for name, o := range r.outcomes {
		if o.Match == match {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Summary is the serialisable form of a Report.
type Summary struct {
	PositiveMatches map[string][]string `json:"positiveMatches"`
	NegativeMatches map[string][]string `json:"negativeMatches"`
	Exclusions      []string            `json:"exclusions"`
	Unconditional   []string            `json:"unconditional"`
}

func (r *Report) Summary() Summary {
	s := Summary{
		PositiveMatches: map[string][]string{},
		NegativeMatches: map[string][]string{},
		Exclusions:      r.Exclusions(),
		Unconditional:   r.Unconditional(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, o := range r.outcomes {
		if o.Match {
			s.PositiveMatches[name] = slices.Clone(o.Messages)
		} else {
			s.NegativeMatches[name] = slices.Clone(o.Messages)
		}
	}
	return s
}

// String renders the report for terminals.
func (r *Report) String() string {
	var b strings.Builder
	section := func(title string, names []string, withMessages bool) {
		fmt.Fprintf(&b, "%s:\n", title)
		if len(names) == 0 {
			b.WriteString("   None\n")
		}
		for _, name := range names {
			fmt.Fprintf(&b, "   %s\n", name)
			if !withMessages {
				continue
			}
			o, _ := r.Outcome(name)
			for _, msg := range o.Messages {
				fmt.Fprintf(&b, "      - %s\n", msg)
			}
		}
		b.WriteString("\n")
	}
	section("Positive matches", r.Matched(), true)
	section("Negative matches", r.Unmatched(), true)
	section("Exclusions", r.Exclusions(), false)
	section("Unconditional", r.Unconditional(), false)
	return strings.TrimRight(b.String(), "\n") + "\n"
}
