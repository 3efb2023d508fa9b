// Package condition decides whether an auto-configuration candidate applies to an
// environment and records why.
package condition

import (
	"fmt"
	"strings"

	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/semver"
)

// Outcome is the result of evaluating one candidate's conditions.
type Outcome struct {
	Match    bool
	Messages []string
}

// Evaluate checks every condition in c against env. All conditions are evaluated
// so the outcome carries a message for each of them.
func Evaluate(env Environment, c metadata.Conditions) Outcome {
	out := Outcome{Match: true}
	record := func(match bool, format string, args ...any) {
		if !match {
			out.Match = false
		}
		out.Messages = append(out.Messages, fmt.Sprintf(format, args...))
	}

	for _, lib := range c.OnLibrary {
		version, present := env.Library(lib.Name)
		if !present {
			record(false, "did not find required library '%s'", lib.Name)
			continue
		}
		if strings.TrimSpace(lib.Version) == "" {
			record(true, "found required library '%s'", lib.Name)
			continue
		}
		constraint, err := semver.ParseConstraint(lib.Version)
		if err != nil {
			record(false, "library '%s' has invalid version constraint: %v", lib.Name, err)
			continue
		}
		v, err := semver.ParseVersion(version)
		if err != nil {
			record(false, "library '%s' reports unparsable version %q", lib.Name, version)
			continue
		}
		if !semver.Satisfies(v, constraint) {
			record(false, "library '%s' %s does not satisfy %s", lib.Name, v, constraint)
			continue
		}
		record(true, "found required library '%s' %s", lib.Name, v)
	}

	if len(c.OnMissingLibrary) > 0 {
		var found []string
		for _, name := range c.OnMissingLibrary {
			if _, present := env.Library(name); present {
				found = append(found, name)
			}
		}
		if len(found) > 0 {
			record(false, "found unwanted library %s", quoteJoin(found))
		} else {
			record(true, "did not find unwanted library %s", quoteJoin(c.OnMissingLibrary))
		}
	}

	for _, p := range c.OnProperty {
		value, present := env.Property(p.Name)
		switch {
		case !present && p.MatchIfMissing:
			record(true, "property '%s' is not set and matches if missing", p.Name)
		case !present:
			record(false, "did not find property '%s'", p.Name)
		case p.HavingValue == "" && strings.EqualFold(strings.TrimSpace(value), "false"):
			record(false, "property '%s' is 'false'", p.Name)
		case p.HavingValue == "":
			record(true, "found property '%s'", p.Name)
		case strings.EqualFold(strings.TrimSpace(value), p.HavingValue):
			record(true, "property '%s' has value '%s'", p.Name, p.HavingValue)
		default:
			record(false, "property '%s' is '%s', expected '%s'", p.Name, value, p.HavingValue)
		}
	}

	return out
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
