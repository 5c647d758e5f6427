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

package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerProvider reads secrets from AWS Secrets Manager.
type SecretsManagerProvider struct {
	client *secretsmanager.Client
}

// NewSecretsManagerProvider creates a provider from an AWS config.
func NewSecretsManagerProvider(cfg aws.Config) *SecretsManagerProvider {
	return &SecretsManagerProvider{
		client: secretsmanager.NewFromConfig(cfg),
	}
}

// GetSecret implements the Provider interface.
func (p *SecretsManagerProvider) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("secrets manager get %q: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q has no string payload", name)
	}
	return *out.SecretString, nil
}
