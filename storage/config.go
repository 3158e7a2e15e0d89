package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Provider names.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider = ProviderLocal
	DefaultBasePath = "archive"
	DefaultRegion   = "us-east-1"
)

// Config holds storage configuration for every backend.
type Config struct {
	// Enabled turns recording archival on.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Provider selects the backend: "local" or "s3".
	Provider string `mapstructure:"provider" json:"provider"`

	// Prefix is prepended to every archived key.
	Prefix string `mapstructure:"prefix" json:"prefix"`

	// BasePath is the root directory for the local backend.
	BasePath string `mapstructure:"base_path" json:"base_path"`

	Bucket         string `mapstructure:"bucket" json:"bucket"`
	Region         string `mapstructure:"region" json:"region"`
	Endpoint       string `mapstructure:"endpoint" json:"endpoint"`
	AccessKey      string `mapstructure:"access_key" json:"-"`
	SecretKey      string `mapstructure:"secret_key" json:"-"`
	ForcePathStyle bool   `mapstructure:"force_path_style" json:"force_path_style"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

// Validate checks the fields the selected provider needs.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local provider")
		}
	case ProviderS3:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("storage: bucket is required for s3 provider"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("storage: region is required for s3 provider"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid s3 config: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}

// Key joins the configured prefix and name into an object key.
func (c *Config) Key(name string) string {
	if c.Prefix == "" {
		return name
	}
	return strings.TrimSuffix(c.Prefix, "/") + "/" + strings.TrimPrefix(name, "/")
}
