// Package metadata describes auto-configuration candidates and the sources they are
// read from.
//
// Sorting and selection only ever see the Reader interface. Everything that talks
// to files or the API server loads a Catalog first and hands that over, so reads
// during a sort are in-memory and side-effect free.
package metadata

import (
	"errors"
	"slices"
)

// DefaultOrder is the priority of a candidate that does not declare one.
const DefaultOrder int32 = 0

// ErrNotFound is returned by a Reader that has no metadata for a name.
var ErrNotFound = errors.New("metadata: candidate not found")

// Metadata is everything known about one auto-configuration candidate.
type Metadata struct {
	Name       string     `yaml:"name"`
	Order      int32      `yaml:"order,omitempty"`
	Before     []string   `yaml:"before,omitempty"`
	After      []string   `yaml:"after,omitempty"`
	Conditions Conditions `yaml:"conditions,omitempty"`
}

// LibraryRequirement matches when Name is present and its version satisfies Version.
// An empty Version accepts any version.
type LibraryRequirement struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

type PropertyCondition struct {
	Name           string `yaml:"name"`
	HavingValue    string `yaml:"havingValue,omitempty"`
	MatchIfMissing bool   `yaml:"matchIfMissing,omitempty"`
}

// Conditions gate whether a candidate is imported. All listed conditions must match.
type Conditions struct {
	OnLibrary        []LibraryRequirement `yaml:"onLibrary,omitempty"`
	OnMissingLibrary []string             `yaml:"onMissingLibrary,omitempty"`
	OnProperty       []PropertyCondition  `yaml:"onProperty,omitempty"`
}

// IsZero reports whether no condition is declared.
func (c Conditions) IsZero() bool {
	return len(c.OnLibrary) == 0 && len(c.OnMissingLibrary) == 0 && len(c.OnProperty) == 0
}

// Clone returns a copy that shares no slices with m.
func (m Metadata) Clone() Metadata {
	out := m
	out.Before = slices.Clone(m.Before)
	out.After = slices.Clone(m.After)
	out.Conditions = Conditions{
		OnLibrary:        slices.Clone(m.Conditions.OnLibrary),
		OnMissingLibrary: slices.Clone(m.Conditions.OnMissingLibrary),
		OnProperty:       slices.Clone(m.Conditions.OnProperty),
	}
	return out
}

// Reader returns the metadata for a candidate name. Any error means the candidate
// is unavailable in the current environment.
type Reader interface {
	Read(name string) (Metadata, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(name string) (Metadata, error)

func (f ReaderFunc) Read(name string) (Metadata, error) {
	return f(name)
}

// Snapshotter hands out the catalog a single sort or selection reads from. Take
// one snapshot per operation and pass the catalog on; never read through a
// Snapshotter twice within one operation.
type Snapshotter interface {
	Snapshot() *Catalog
}
