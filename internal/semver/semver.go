// Package semver wraps github.com/Masterminds/semver/v3 for library version
// conditions.
package semver

import (
	"fmt"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// AnyVersion is the constraint used when a requirement does not name one.
const AnyVersion = "*"

// Version is a semantic version reported by the environment for a library.
type Version struct {
	v *mm.Version
}

// Constraint is a version range such as ">=2.13 <3", "^1.0.0" or "~1.4".
type Constraint struct {
	raw string
	c   *mm.Constraints
}

// ParseVersion accepts loose versions ("2", "2.13", "v2.13.1").
func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.Original()
}

// ParseConstraint parses raw. A blank constraint matches any version.
func ParseConstraint(raw string) (Constraint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = AnyVersion
	}
	c, err := mm.NewConstraint(raw)
	if err != nil {
		return Constraint{}, fmt.Errorf("semver: parse constraint %q: %w", raw, err)
	}
	return Constraint{raw: raw, c: c}, nil
}

func MustParseConstraint(raw string) Constraint {
	c, err := ParseConstraint(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Constraint) String() string {
	return c.raw
}

func Satisfies(v Version, c Constraint) bool {
	if v.v == nil || c.c == nil {
		return false
	}
	return c.c.Check(v.v)
}

// Requirement is a library name paired with a version constraint.
type Requirement struct {
	Library    string
	Constraint Constraint
}

// ParseRequirement parses "name" or "name@constraint", e.g.
// "jackson-databind@>=2.13 <3".
func ParseRequirement(raw string) (Requirement, error) {
	name, constraint, _ := strings.Cut(strings.TrimSpace(raw), "@")
	name = strings.TrimSpace(name)
	if name == "" {
		return Requirement{}, fmt.Errorf("semver: requirement %q has no library name", raw)
	}
	c, err := ParseConstraint(constraint)
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{Library: name, Constraint: c}, nil
}
