// Package config loads the settings of the ordering server.
//
// Values come from, lowest priority first: built-in defaults, a YAML file, and
// AUTOCONFIG_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGRPCAddress   = ":9090"
	DefaultHTTPAddress   = ":8080"
	DefaultWatchDebounce = 250 * time.Millisecond

	EnvGRPCAddress     = "AUTOCONFIG_GRPC_ADDRESS"
	EnvHTTPAddress     = "AUTOCONFIG_HTTP_ADDRESS"
	EnvMetadataFile    = "AUTOCONFIG_METADATA_FILE"
	EnvEnvironmentFile = "AUTOCONFIG_ENVIRONMENT_FILE"
	EnvWatch           = "AUTOCONFIG_WATCH"
)

type ServerConfig struct {
	GRPCAddress string `yaml:"grpcAddress"`
	HTTPAddress string `yaml:"httpAddress"`
	// MetadataFile is the YAML document of auto-configuration metadata.
	MetadataFile string `yaml:"metadataFile"`
	// EnvironmentFile, when set, is the default environment for /v1/select
	// callers that do not send one.
	EnvironmentFile string        `yaml:"environmentFile,omitempty"`
	Watch           bool          `yaml:"watch"`
	WatchDebounce   time.Duration `yaml:"watchDebounce,omitempty"`
}

func Default() ServerConfig {
	return ServerConfig{
		GRPCAddress:   DefaultGRPCAddress,
		HTTPAddress:   DefaultHTTPAddress,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// Load reads path over the defaults and applies environment overrides. An empty
// path skips the file. The result is validated.
func Load(path string) (ServerConfig, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return ServerConfig{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return ServerConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *ServerConfig) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvGRPCAddress); ok {
		c.GRPCAddress = v
	}
	if v, ok := lookup(EnvHTTPAddress); ok {
		c.HTTPAddress = v
	}
	if v, ok := lookup(EnvMetadataFile); ok {
		c.MetadataFile = v
	}
	if v, ok := lookup(EnvEnvironmentFile); ok {
		c.EnvironmentFile = v
	}
	if v, ok := lookup(EnvWatch); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWatch, err)
		}
		c.Watch = b
	}
	return nil
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.GRPCAddress, validation.Required),
		validation.Field(&c.HTTPAddress, validation.Required),
		validation.Field(&c.MetadataFile, validation.Required),
		validation.Field(&c.WatchDebounce, validation.Min(time.Duration(0))),
	)
}
