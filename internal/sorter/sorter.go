// Package sorter orders auto-configuration candidates.
//
// Ordering happens in three passes over the requested names: lexicographic, then a
// stable sort on each candidate's order value, then a depth-first pass that moves
// every candidate behind the ones it must follow. Candidates referenced only
// through before/after declarations take part in the last pass but are dropped
// from the result.
package sorter

import (
	"cmp"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/autoconfig/internal/metadata"
)

// Sorter orders candidate names using metadata from a Reader. It holds no state
// between calls and is safe for concurrent use if the Reader is.
type Sorter struct {
	reader metadata.Reader
}

func New(reader metadata.Reader) *Sorter {
	return &Sorter{reader: reader}
}

// Sort returns names in import order. Duplicates are collapsed. The result holds
// exactly the distinct input names, or a *CycleError if the before/after
// declarations contradict each other.
func (s *Sorter) Sort(names []string) ([]string, error) {
	requested := dedupe(names)
	set := newCandidateSet(s.reader, requested)

	ordered := slices.Clone(requested)
	slices.Sort(ordered)
	slices.SortStableFunc(ordered, func(a, b string) int {
		return cmp.Compare(set.order(a), set.order(b))
	})

	return sortByRelations(set, ordered)
}

// Sort is shorthand for New(reader).Sort(names).
func Sort(reader metadata.Reader, names []string) ([]string, error) {
	return New(reader).Sort(names)
}

type relationalSort struct {
	set        *candidateSet
	position   map[string]int
	pending    sets.Set[string]
	processing sets.Set[string]
	placed     sets.Set[string]
	sorted     []string
}

func sortByRelations(set *candidateSet, ordered []string) ([]string, error) {
	queue := dedupe(append(slices.Clone(ordered), set.names...))
	r := &relationalSort{
		set:        set,
		position:   make(map[string]int, len(queue)),
		pending:    sets.New(queue...),
		processing: sets.New[string](),
		placed:     sets.New[string](),
		sorted:     make([]string, 0, len(queue)),
	}
	for i, name := range queue {
		r.position[name] = i
	}

	for _, name := range queue {
		if !r.pending.Has(name) {
			continue
		}
		if err := r.place(name); err != nil {
			return nil, err
		}
	}

	requested := sets.New(ordered...)
	out := make([]string, 0, len(ordered))
	for _, name := range r.sorted {
		if requested.Has(name) {
			out = append(out, name)
		}
	}
	return out, nil
}

// place appends current to the result after recursively placing everything it
// must follow. Dependencies still waiting in the queue are visited in queue
// order, not declaration order.
func (r *relationalSort) place(current string) error {
	r.processing.Insert(current)

	var deps []string
	for _, after := range r.set.requestedAfter(current) {
		if r.processing.Has(after) {
			return &CycleError{Current: current, After: after}
		}
		if !r.placed.Has(after) && r.pending.Has(after) {
			deps = append(deps, after)
		}
	}
	slices.SortFunc(deps, func(a, b string) int {
		return cmp.Compare(r.position[a], r.position[b])
	})
	for _, dep := range deps {
		// An earlier sibling may already have placed it.
		if r.placed.Has(dep) {
			continue
		}
		if err := r.place(dep); err != nil {
			return err
		}
	}

	r.processing.Delete(current)
	r.pending.Delete(current)
	r.placed.Insert(current)
	r.sorted = append(r.sorted, current)
	return nil
}
