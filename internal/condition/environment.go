package condition

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
)

// LibraryKeyPrefix marks ConfigMap keys that declare a present library.
const LibraryKeyPrefix = "library."

// Environment is what conditions are evaluated against: the libraries present
// (name to version) and free-form properties.
type Environment struct {
	Libraries  map[string]string `yaml:"libraries,omitempty" json:"libraries,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Library returns the version of a present library.
func (e Environment) Library(name string) (string, bool) {
	v, ok := e.Libraries[name]
	return v, ok
}

func (e Environment) Property(name string) (string, bool) {
	v, ok := e.Properties[name]
	return v, ok
}

// EnvironmentFromConfigMap reads "library.<name>: <version>" keys as libraries
// and every other key as a property.
func EnvironmentFromConfigMap(cm *corev1.ConfigMap) Environment {
	env := Environment{
		Libraries:  map[string]string{},
		Properties: map[string]string{},
	}
	if cm == nil {
		return env
	}
	for k, v := range cm.Data {
		if name, ok := strings.CutPrefix(k, LibraryKeyPrefix); ok && name != "" {
			env.Libraries[name] = strings.TrimSpace(v)
			continue
		}
		env.Properties[k] = v
	}
	return env
}

// DecodeEnvironment reads a YAML environment with top-level "libraries" and
// "properties" maps.
func DecodeEnvironment(r io.Reader) (Environment, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var env Environment
	if err := dec.Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return Environment{}, fmt.Errorf("condition: decode environment: %w", err)
	}
	return env, nil
}

func LoadEnvironmentFile(path string) (Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Environment{}, fmt.Errorf("condition: open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeEnvironment(f)
}
