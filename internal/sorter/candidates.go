package sorter

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/anvil-platform/autoconfig/internal/metadata"
)

type candidate struct {
	name      string
	order     int32
	before    sets.Set[string]
	beforeIn  []string
	after     []string
	available bool
}

// candidateSet is the universe for one sort call: the requested names plus every
// available candidate reachable through before/after declarations.
type candidateSet struct {
	reader  metadata.Reader
	byName  map[string]*candidate
	names   []string
	skipped sets.Set[string]
}

func newCandidateSet(reader metadata.Reader, requested []string) *candidateSet {
	cs := &candidateSet{
		reader:  reader,
		byName:  make(map[string]*candidate, len(requested)),
		skipped: sets.New[string](),
	}
	cs.add(requested, true)
	return cs
}

// add loads names into the set. Required names are kept even when their metadata
// cannot be read; referenced names are kept only when available. Only available
// candidates have their own references followed.
func (cs *candidateSet) add(names []string, required bool) {
	for _, name := range names {
		if _, ok := cs.byName[name]; ok {
			continue
		}
		if !required && cs.skipped.Has(name) {
			continue
		}
		c := cs.load(name)
		if !required && !c.available {
			cs.skipped.Insert(name)
			continue
		}
		cs.byName[name] = c
		cs.names = append(cs.names, name)
		if c.available {
			cs.add(c.beforeIn, false)
			cs.add(c.after, false)
		}
	}
}

func (cs *candidateSet) load(name string) *candidate {
	c := &candidate{name: name, order: metadata.DefaultOrder, before: sets.New[string]()}
	if cs.reader == nil {
		return c
	}
	m, err := cs.reader.Read(name)
	if err != nil {
		return c
	}
	c.available = true
	c.order = m.Order
	c.beforeIn = dedupe(m.Before)
	c.before.Insert(c.beforeIn...)
	c.after = dedupe(m.After)
	return c
}

func (cs *candidateSet) order(name string) int32 {
	if c, ok := cs.byName[name]; ok {
		return c.order
	}
	return metadata.DefaultOrder
}

// requestedAfter returns every name that must be placed before name: its own
// after declarations followed by each candidate whose before names it, in
// candidate-set order.
func (cs *candidateSet) requestedAfter(name string) []string {
	c, ok := cs.byName[name]
	if !ok {
		return nil
	}
	out := append([]string(nil), c.after...)
	seen := sets.New(out...)
	for _, other := range cs.names {
		if seen.Has(other) {
			continue
		}
		if cs.byName[other].before.Has(name) {
			out = append(out, other)
			seen.Insert(other)
		}
	}
	return out
}

// dedupe drops repeated names, keeping the first occurrence of each.
func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := sets.New[string]()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen.Has(n) {
			continue
		}
		seen.Insert(n)
		out = append(out, n)
	}
	return out
}
