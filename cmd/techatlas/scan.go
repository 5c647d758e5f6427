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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"github.com/techatlashq/techatlas/internal/artifact"
	"github.com/techatlashq/techatlas/internal/config"
	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
	"github.com/techatlashq/techatlas/internal/github"
	"github.com/techatlashq/techatlas/internal/pipeline"
	"github.com/techatlashq/techatlas/internal/secrets"
)

// scanCmd represents the scan command
func newScanCommand() *cobra.Command {
	var (
		configPath string
		org        string
		token      string
		batchSize  int
		outputPath string
		bucket     string
		key        string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan an organization and write its technology inventory",
		Long: `Scan walks every repository of the configured GitHub organization,
collects technology signals, and writes the aggregated inventory document.

Authentication:
  - Use --token or the GITHUB_TOKEN environment variable for local runs
  - Or configure an AWS Secrets Manager secret (auth.secret_name) holding
    the GitHub App installation token

The destination is selected by the environment setting: "production"
writes to s3://<bucket>/<key>, anything else writes to a local file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Flag overrides
			if org != "" {
				cfg.GitHub.Org = org
			}
			if batchSize > 0 {
				cfg.Defaults.BatchSize = batchSize
			}
			if outputPath != "" {
				cfg.Destination.LocalPath = outputPath
			}
			if bucket != "" {
				cfg.Destination.Bucket = bucket
				cfg.Environment = "production"
			}
			if key != "" {
				cfg.Destination.Key = key
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %v: %w", err, atlaserrors.ErrInvalidBatchSize)
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			return runScan(ctx, cfg, token)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: .techatlas.yaml)")
	cmd.Flags().StringVar(&org, "org", "", "GitHub organization (overrides config)")
	cmd.Flags().StringVar(&token, "token", "", "GitHub token (overrides secret store and GITHUB_TOKEN)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Repositories per page, 1-100 (overrides config)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Local output path for non-production runs")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket; setting this selects production mode")
	cmd.Flags().StringVar(&key, "key", "", "S3 object key for the inventory document")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall run deadline (0 = none)")

	return cmd
}

// runScan wires the configured collaborators and executes the pipeline.
func runScan(ctx context.Context, cfg *config.Config, tokenFlag string) error {
	log, cleanup := config.SetupLogger(cfg.Log.File, config.ParseLevel(cfg.Log.Level))
	defer cleanup()

	needsAWS := cfg.IsProduction() || (tokenFlag == "" && cfg.Auth.SecretName != "")
	var awsCfg awsConfigResult
	if needsAWS {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Auth.AWSRegion))
		if err != nil {
			return fmt.Errorf("failed to load AWS configuration: %v: %w", err, atlaserrors.ErrAuthResolution)
		}
		awsCfg.cfg = loaded
		awsCfg.ok = true
	}

	creds := credentialSource(cfg, tokenFlag, awsCfg)

	var store artifact.Store
	var docKey string
	if cfg.IsProduction() {
		store = artifact.NewS3Store(awsCfg.cfg, cfg.Destination.Bucket)
		docKey = cfg.Destination.Key
	} else {
		store = artifact.NewLocalStore("")
		docKey = cfg.Destination.LocalPath
	}
	writer := artifact.NewWriter(store, docKey)

	retryConfig := github.DefaultRetryConfig()
	retryConfig.MaxAttempts = cfg.Defaults.MaxRetries

	driver := pipeline.NewWriterDriver(
		cfg.GitHub.Org,
		cfg.Defaults.BatchSize,
		creds,
		func(token string) github.Client {
			return github.NewRetryClient(
				github.NewGraphQLClient(token, cfg.GitHub.GraphQLEndpoint),
				retryConfig, log)
		},
		writer,
		log,
	)

	_, err := driver.Run(ctx)
	return err
}

type awsConfigResult struct {
	cfg aws.Config
	ok  bool
}

// credentialSource picks the token source: explicit flag, secret store,
// then plain environment variable.
func credentialSource(cfg *config.Config, tokenFlag string, awsCfg awsConfigResult) pipeline.CredentialFunc {
	return func(ctx context.Context) (*secrets.Credential, error) {
		if tokenFlag != "" {
			return secrets.StaticToken(tokenFlag), nil
		}

		if cfg.Auth.SecretName != "" {
			if !awsCfg.ok {
				return nil, fmt.Errorf("AWS configuration unavailable for secret %q: %w",
					cfg.Auth.SecretName, atlaserrors.ErrAuthResolution)
			}
			resolver := secrets.NewResolver(secrets.NewSecretsManagerProvider(awsCfg.cfg))
			return resolver.Resolve(ctx, cfg.Auth.ClientID, cfg.Auth.SecretName)
		}

		if token := os.Getenv(cfg.Auth.TokenEnv); token != "" {
			return secrets.StaticToken(token), nil
		}

		return nil, fmt.Errorf("no GitHub token: set --token, %s, or auth.secret_name: %w",
			cfg.Auth.TokenEnv, atlaserrors.ErrAuthResolution)
	}
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, atlaserrors.ErrAuthResolution) ||
		errors.Is(err, atlaserrors.ErrAuthRejected) ||
		errors.Is(err, atlaserrors.ErrOrgNotFound) ||
		errors.Is(err, atlaserrors.ErrInvalidBatchSize) {
		return 2 // Configuration/authentication errors
	}

	if errors.Is(err, atlaserrors.ErrUpstreamUnavailable) ||
		errors.Is(err, atlaserrors.ErrNetworkFailure) ||
		errors.Is(err, atlaserrors.ErrRateLimit) ||
		errors.Is(err, atlaserrors.ErrDeadlineExceeded) {
		return 3 // Upstream errors
	}

	if errors.Is(err, atlaserrors.ErrPersistence) {
		return 4 // Artifact write errors
	}

	return 1 // General error
}
