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

// The techatlas-lambda binary runs one inventory pass per invocation,
// configured entirely through environment variables. It shares the
// pipeline with the techatlas CLI; only the entry point differs.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/techatlashq/techatlas/internal/artifact"
	"github.com/techatlashq/techatlas/internal/config"
	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
	"github.com/techatlashq/techatlas/internal/github"
	"github.com/techatlashq/techatlas/internal/pipeline"
	"github.com/techatlashq/techatlas/internal/secrets"
)

// Response summarizes a completed run for the invoking harness.
type Response struct {
	Organization string `json:"organization"`
	Repositories int    `json:"repositories"`
	Destination  string `json:"destination"`
}

func handle(ctx context.Context) (*Response, error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v: %w", err, atlaserrors.ErrInvalidBatchSize)
	}

	log, cleanup := config.SetupLogger(cfg.Log.File, config.ParseLevel(cfg.Log.Level))
	defer cleanup()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Auth.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %v: %w", err, atlaserrors.ErrAuthResolution)
	}

	resolver := secrets.NewResolver(secrets.NewSecretsManagerProvider(awsCfg))

	var store artifact.Store
	var docKey string
	if cfg.IsProduction() {
		store = artifact.NewS3Store(awsCfg, cfg.Destination.Bucket)
		docKey = cfg.Destination.Key
	} else {
		store = artifact.NewLocalStore("/tmp")
		docKey = cfg.Destination.LocalPath
	}
	writer := artifact.NewWriter(store, docKey)

	retryConfig := github.DefaultRetryConfig()
	retryConfig.MaxAttempts = cfg.Defaults.MaxRetries

	driver := pipeline.NewWriterDriver(
		cfg.GitHub.Org,
		cfg.Defaults.BatchSize,
		func(ctx context.Context) (*secrets.Credential, error) {
			return resolver.Resolve(ctx, cfg.Auth.ClientID, cfg.Auth.SecretName)
		},
		func(token string) github.Client {
			return github.NewRetryClient(
				github.NewGraphQLClient(token, cfg.GitHub.GraphQLEndpoint),
				retryConfig, log)
		},
		writer,
		log,
	)

	doc, err := driver.Run(ctx)
	if err != nil {
		return nil, err
	}

	return &Response{
		Organization: doc.Organization,
		Repositories: len(doc.Repositories),
		Destination:  writer.Destination(),
	}, nil
}

func main() {
	lambda.Start(handle)
}
