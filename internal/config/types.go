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

// Package config types define the configuration structures used throughout
// techatlas. These types represent settings that can be loaded from YAML
// configuration files, environment variables, or command-line flags.
package config

// Config represents the complete configuration for techatlas. It
// consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	GitHub      GitHubConfig      `yaml:"github"`
	Auth        AuthConfig        `yaml:"auth"`
	Destination DestinationConfig `yaml:"destination"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Log         LogConfig         `yaml:"log"`

	// Environment selects the artifact destination: "production" writes
	// to S3, anything else writes to the local path.
	Environment string `yaml:"environment"`
}

// GitHubConfig contains GitHub-specific settings including the GraphQL
// endpoint and the organization to inventory. A custom endpoint allows
// GitHub Enterprise deployments and test servers.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	Org             string `yaml:"org"`
}

// AuthConfig controls how the GitHub token is resolved. When SecretName
// is set, the token is fetched from AWS Secrets Manager and checked
// against ClientID. TokenEnv names an environment variable holding a
// plain token for local runs.
type AuthConfig struct {
	ClientID   string `yaml:"client_id"`
	SecretName string `yaml:"secret_name"`
	AWSRegion  string `yaml:"aws_region"`
	TokenEnv   string `yaml:"token_env"`
}

// DestinationConfig names where the inventory artifact is written. The
// bucket and key apply in production; LocalPath applies everywhere else.
type DestinationConfig struct {
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	LocalPath string `yaml:"local_path"`
}

// DefaultsConfig contains settings that control the core behavior of the
// harvest unless overridden by command-line flags.
type DefaultsConfig struct {
	BatchSize  int `yaml:"batch_size"`
	MaxRetries int `yaml:"max_retries"`
}

// LogConfig controls the dual-output logger: human-readable text on
// stderr plus JSON appended to File when set.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. These defaults target public GitHub.com but can be overridden
// for GitHub Enterprise or special requirements.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
		},
		Auth: AuthConfig{
			AWSRegion: "us-east-1",
			TokenEnv:  "GITHUB_TOKEN",
		},
		Destination: DestinationConfig{
			Key:       "github_inventory.json",
			LocalPath: "github_inventory.json",
		},
		Defaults: DefaultsConfig{
			BatchSize:  30,
			MaxRetries: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
		Environment: "local",
	}
}
