// Package watch keeps a served metadata catalog in step with its file on disk.
package watch

import (
	"sync/atomic"

	"github.com/anvil-platform/autoconfig/internal/metadata"
)

// Store holds the catalog currently being served. Readers never block on a
// reload; a swap is visible to the next snapshot.
//
// Take one Snapshot per operation; reading the Store repeatedly during a sort
// can observe two catalogs.
type Store struct {
	current atomic.Pointer[metadata.Catalog]
}

func NewStore(c *metadata.Catalog) *Store {
	s := &Store{}
	s.Swap(c)
	return s
}

func (s *Store) Load() *metadata.Catalog {
	return s.current.Load()
}

// Snapshot returns the served catalog. Swapped-in catalogs are never modified
// afterwards, so the result stays consistent for as long as it is held.
func (s *Store) Snapshot() *metadata.Catalog {
	return s.current.Load()
}

// Swap replaces the served catalog. A nil catalog is served as empty. c must
// not be modified after the swap.
func (s *Store) Swap(c *metadata.Catalog) {
	if c == nil {
		c = metadata.NewCatalog()
	}
	s.current.Store(c)
}
