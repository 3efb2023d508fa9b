package metadata

import (
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Catalog is an in-memory Reader populated by explicit registration.
// It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Metadata
}

func NewCatalog(entries ...Metadata) *Catalog {
	c := &Catalog{entries: make(map[string]Metadata, len(entries))}
	for _, m := range entries {
		c.Register(m)
	}
	return c
}

// Register adds m, replacing any earlier registration with the same name.
func (c *Catalog) Register(m Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]Metadata)
	}
	c.entries[m.Name] = m.Clone()
}

func (c *Catalog) Read(name string) (Metadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[name]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return m.Clone(), nil
}

// Names returns every registered name in lexicographic order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sets.List(sets.KeySet(c.entries))
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Merge registers every entry of other into c. Entries of other win.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil || other == c {
		return
	}
	other.mu.RLock()
	snapshot := make([]Metadata, 0, len(other.entries))
	for _, m := range other.entries {
		snapshot = append(snapshot, m)
	}
	other.mu.RUnlock()

	for _, m := range snapshot {
		c.Register(m)
	}
}

// Snapshot returns a copy of c, so later registrations do not show up in it.
func (c *Catalog) Snapshot() *Catalog {
	out := NewCatalog()
	out.Merge(c)
	return out
}
