package metadata

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/anvil-platform/autoconfig/internal/semver"
)

// Document is the on-disk form of a set of candidates:
//
//	autoConfigurations:
//	  - name: cache.redis
//	    order: -10
//	    after: [data.redis]
//	    conditions:
//	      onLibrary:
//	        - name: lettuce
//	          version: ">=6"
//	        - jedis@^5
type Document struct {
	AutoConfigurations []Metadata `yaml:"autoConfigurations"`
}

// UnmarshalYAML accepts the mapping form and the short form "name@constraint".
func (r *LibraryRequirement) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		req, err := semver.ParseRequirement(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		version := req.Constraint.String()
		if version == semver.AnyVersion {
			version = ""
		}
		*r = LibraryRequirement{Name: req.Library, Version: version}
		return nil
	case yaml.MappingNode:
		// Node.Decode does not inherit KnownFields.
		for i := 0; i+1 < len(value.Content); i += 2 {
			switch key := value.Content[i]; key.Value {
			case "name", "version":
			default:
				return fmt.Errorf("line %d: field %s not found in onLibrary entry", key.Line, key.Value)
			}
		}
	}
	type plain LibraryRequirement
	return value.Decode((*plain)(r))
}

// DecodeDocument reads one YAML document from r. Unknown fields are rejected and
// every invalid entry is reported, not just the first.
func DecodeDocument(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewCatalog(), nil
		}
		return nil, fmt.Errorf("metadata: decode document: %w", err)
	}

	var errs []error
	seen := make(map[string]int, len(doc.AutoConfigurations))
	for i, m := range doc.AutoConfigurations {
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("autoConfigurations[%d]: %w", i, err))
			continue
		}
		if prev, dup := seen[m.Name]; dup {
			errs = append(errs, fmt.Errorf("autoConfigurations[%d]: %q already declared at index %d", i, m.Name, prev))
			continue
		}
		seen[m.Name] = i
	}
	if err := utilerrors.NewAggregate(errs); err != nil {
		return nil, err
	}
	return NewCatalog(doc.AutoConfigurations...), nil
}

// LoadFile decodes the document at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: open %s: %w", path, err)
	}
	defer f.Close()

	c, err := DecodeDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
