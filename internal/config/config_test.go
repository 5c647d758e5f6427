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

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent-but-unspecified"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	cfg, err = LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GitHub.GraphQLEndpoint != "https://api.github.com/graphql" {
		t.Errorf("endpoint = %q", cfg.GitHub.GraphQLEndpoint)
	}
	if cfg.Defaults.BatchSize != 30 {
		t.Errorf("batch size = %d, want 30", cfg.Defaults.BatchSize)
	}
	if cfg.Defaults.MaxRetries != 5 {
		t.Errorf("max retries = %d, want 5", cfg.Defaults.MaxRetries)
	}
	if cfg.IsProduction() {
		t.Error("default environment must not be production")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `github:
  org: acme
  graphql_endpoint: https://ghe.example.com/api/graphql
auth:
  client_id: Iv1.abc123
  secret_name: prod/github-app
destination:
  bucket: inventory-bucket
  key: github_inventory.json
defaults:
  batch_size: 50
  max_retries: 3
environment: production
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GitHub.Org != "acme" {
		t.Errorf("org = %q", cfg.GitHub.Org)
	}
	if cfg.GitHub.GraphQLEndpoint != "https://ghe.example.com/api/graphql" {
		t.Errorf("endpoint = %q", cfg.GitHub.GraphQLEndpoint)
	}
	if cfg.Auth.SecretName != "prod/github-app" {
		t.Errorf("secret name = %q", cfg.Auth.SecretName)
	}
	if cfg.Defaults.BatchSize != 50 {
		t.Errorf("batch size = %d, want 50", cfg.Defaults.BatchSize)
	}
	if !cfg.IsProduction() {
		t.Error("environment should be production")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_ORG", "env-org")
	t.Setenv("BATCH_SIZE", "75")
	t.Setenv("MAX_RETRIES", "2")
	t.Setenv("SOURCE_BUCKET", "env-bucket")
	t.Setenv("SOURCE_KEY", "env-key.json")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.GitHub.Org != "env-org" {
		t.Errorf("org = %q, want env-org", cfg.GitHub.Org)
	}
	if cfg.Defaults.BatchSize != 75 {
		t.Errorf("batch size = %d, want 75", cfg.Defaults.BatchSize)
	}
	if cfg.Defaults.MaxRetries != 2 {
		t.Errorf("max retries = %d, want 2", cfg.Defaults.MaxRetries)
	}
	if cfg.Destination.Bucket != "env-bucket" || cfg.Destination.Key != "env-key.json" {
		t.Errorf("destination = %+v", cfg.Destination)
	}
	if !cfg.IsProduction() {
		t.Error("environment override ignored")
	}
}

func TestLoadConfig_InvalidEnvIgnored(t *testing.T) {
	t.Setenv("BATCH_SIZE", "not-a-number")
	t.Setenv("MAX_RETRIES", "-3")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Defaults.BatchSize != 30 {
		t.Errorf("batch size = %d, want default 30", cfg.Defaults.BatchSize)
	}
	if cfg.Defaults.MaxRetries != 5 {
		t.Errorf("max retries = %d, want default 5", cfg.Defaults.MaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid local",
			mutate:  func(c *Config) { c.GitHub.Org = "acme" },
			wantErr: false,
		},
		{
			name:    "missing org",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "batch size zero",
			mutate: func(c *Config) {
				c.GitHub.Org = "acme"
				c.Defaults.BatchSize = 0
			},
			wantErr: true,
		},
		{
			name: "batch size over API limit",
			mutate: func(c *Config) {
				c.GitHub.Org = "acme"
				c.Defaults.BatchSize = 101
			},
			wantErr: true,
		},
		{
			name: "production without bucket",
			mutate: func(c *Config) {
				c.GitHub.Org = "acme"
				c.Environment = "production"
			},
			wantErr: true,
		},
		{
			name: "production with destination",
			mutate: func(c *Config) {
				c.GitHub.Org = "acme"
				c.Environment = "production"
				c.Destination.Bucket = "b"
				c.Destination.Key = "k"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
