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

// Package secrets resolves the GitHub API credential from a secret
// store. A missing or malformed secret is a configuration error and is
// never retried.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
)

// Provider returns the raw payload stored under a named secret. It is
// a narrow interface so tests can supply in-memory fakes.
type Provider interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Credential is the parsed secret payload.
type Credential struct {
	Token     string    `json:"token"`
	ClientID  string    `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Resolver turns a secret name plus the expected app client ID into a
// usable credential.
type Resolver struct {
	provider Provider
}

// NewResolver creates a Resolver backed by the given provider.
func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve fetches and parses the credential. All failure modes wrap
// ErrAuthResolution: the secret does not exist, the payload is not the
// expected JSON shape, the token is empty, or the payload's client ID
// does not match the configured one.
func (r *Resolver) Resolve(ctx context.Context, clientID, secretName string) (*Credential, error) {
	if secretName == "" {
		return nil, fmt.Errorf("secret name is empty: %w", atlaserrors.ErrAuthResolution)
	}

	payload, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret %q: %v: %w",
			secretName, err, atlaserrors.ErrAuthResolution)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(payload), &cred); err != nil {
		return nil, fmt.Errorf("secret %q is not a valid credential payload: %v: %w",
			secretName, err, atlaserrors.ErrAuthResolution)
	}

	if strings.TrimSpace(cred.Token) == "" {
		return nil, fmt.Errorf("secret %q contains no token: %w",
			secretName, atlaserrors.ErrAuthResolution)
	}

	if clientID != "" && cred.ClientID != "" && cred.ClientID != clientID {
		return nil, fmt.Errorf("secret %q was issued for a different app client: %w",
			secretName, atlaserrors.ErrAuthResolution)
	}

	if !cred.ExpiresAt.IsZero() && time.Now().After(cred.ExpiresAt) {
		return nil, fmt.Errorf("secret %q holds an expired token: %w",
			secretName, atlaserrors.ErrAuthResolution)
	}

	return &cred, nil
}

// StaticToken returns a credential wrapping a plain token, for local
// runs that bypass the secret store.
func StaticToken(token string) *Credential {
	return &Credential{Token: token}
}
