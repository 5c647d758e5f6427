// Copyright 2025 TechAtlas, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for techatlas with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in standard locations. Environment variable
// names match the ones the scheduled Lambda deployment uses, so the same
// settings drive both entry points.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .techatlas.yaml (current directory)
//   - .techatlas.yml (current directory)
//   - ~/.techatlas/config.yaml
//   - ~/.techatlas/config.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".techatlas.yaml",
			".techatlas.yml",
			filepath.Join(os.Getenv("HOME"), ".techatlas", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".techatlas", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Destination.LocalPath = expandPath(cfg.Destination.LocalPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// The names mirror the Lambda deployment's environment so one set of
// variables configures both entry points.
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}
	if org := os.Getenv("GITHUB_ORG"); org != "" {
		cfg.GitHub.Org = org
	}

	if clientID := os.Getenv("GITHUB_APP_CLIENT_ID"); clientID != "" {
		cfg.Auth.ClientID = clientID
	}
	if secretName := os.Getenv("AWS_SECRET_NAME"); secretName != "" {
		cfg.Auth.SecretName = secretName
	}
	if region := os.Getenv("AWS_DEFAULT_REGION"); region != "" {
		cfg.Auth.AWSRegion = region
	}

	if bucket := os.Getenv("SOURCE_BUCKET"); bucket != "" {
		cfg.Destination.Bucket = bucket
	}
	if key := os.Getenv("SOURCE_KEY"); key != "" {
		cfg.Destination.Key = key
	}

	if batchSize := os.Getenv("BATCH_SIZE"); batchSize != "" {
		if size, err := parsePositiveInt(batchSize); err == nil {
			cfg.Defaults.BatchSize = size
		}
	}
	if maxRetries := os.Getenv("MAX_RETRIES"); maxRetries != "" {
		if n, err := parsePositiveInt(maxRetries); err == nil {
			cfg.Defaults.MaxRetries = n
		}
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Environment = env
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// IsProduction reports whether the artifact should be written to S3.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate checks if the configuration contains valid values. It ensures
// the batch size is within GitHub's limits, the organization is set, and
// production runs name an S3 destination. This should be called after
// loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.GitHub.Org == "" {
		return fmt.Errorf("github organization cannot be empty")
	}
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty")
	}
	if c.Defaults.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got: %d", c.Defaults.BatchSize)
	}
	if c.Defaults.BatchSize > 100 {
		return fmt.Errorf("batch size %d exceeds GitHub API limit of 100", c.Defaults.BatchSize)
	}
	if c.Defaults.MaxRetries <= 0 {
		return fmt.Errorf("max retries must be positive, got: %d", c.Defaults.MaxRetries)
	}
	if c.IsProduction() {
		if c.Destination.Bucket == "" {
			return fmt.Errorf("production runs require a destination bucket")
		}
		if c.Destination.Key == "" {
			return fmt.Errorf("production runs require a destination key")
		}
	}
	return nil
}
