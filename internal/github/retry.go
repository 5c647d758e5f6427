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

package github

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
	"github.com/techatlashq/techatlas/internal/giterror"
)

// RetryConfig configures the retry behavior for API calls. It is a
// plain value so tests can inject zero-delay policies.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per page, including
	// the first one.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts, including delays
	// taken from rate-limit reset hints.
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryClient wraps a GitHub client with automatic retry for rate
// limits and transient failures using exponential backoff with jitter.
// Authorization and not-found errors surface immediately. Exhausting
// the attempt budget wraps the last error in ErrUpstreamUnavailable so
// the driver aborts the run without committing a partial inventory.
type RetryClient struct {
	client    Client
	config    *RetryConfig
	inspector *giterror.Inspector
	log       *slog.Logger
}

// NewRetryClient creates a RetryClient with the given configuration.
// A nil config selects DefaultRetryConfig.
func NewRetryClient(client Client, config *RetryConfig, log *slog.Logger) Client {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &RetryClient{
		client:    client,
		config:    config,
		inspector: giterror.NewInspector(),
		log:       log,
	}
}

// FetchRepositoryPage implements the Client interface with retry logic.
func (r *RetryClient) FetchRepositoryPage(ctx context.Context, org string, opts FetchOptions) (*RepositoryPage, error) {
	var page *RepositoryPage
	err := r.withRetry(ctx, "repository page", func() error {
		var ferr error
		page, ferr = r.client.FetchRepositoryPage(ctx, org, opts)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// FetchOrgTeams implements the Client interface with retry logic.
func (r *RetryClient) FetchOrgTeams(ctx context.Context, org string) ([]Team, error) {
	var teams []Team
	err := r.withRetry(ctx, "org teams", func() error {
		var ferr error
		teams, ferr = r.client.FetchOrgTeams(ctx, org)
		return ferr
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// withRetry runs op until it succeeds, fails non-retryably, or the
// attempt budget is spent.
func (r *RetryClient) withRetry(ctx context.Context, what string, op func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		lastErr = err

		// Config, auth, and not-found errors are fatal immediately.
		if !r.inspector.IsRetryable(err) {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Last attempt spent; no point computing another wait.
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt)

		// A rate-limit reset hint overrides the generic schedule.
		if reset, ok := giterror.ResetHint(err); ok {
			hinted := time.Until(reset)
			if hinted > 0 {
				wait = hinted
			}
			if wait > r.config.MaxBackoff {
				wait = r.config.MaxBackoff
			}
		}

		if r.inspector.IsRateLimitError(err) {
			r.log.Warn("rate limit hit, backing off",
				"what", what, "wait", wait,
				"attempt", attempt+1, "max_attempts", r.config.MaxAttempts)
		} else {
			r.log.Warn("transient upstream failure, retrying",
				"what", what, "error", err, "wait", wait,
				"attempt", attempt+1, "max_attempts", r.config.MaxAttempts)
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("giving up on %s after %d attempts: %v: %w",
		what, r.config.MaxAttempts, lastErr, atlaserrors.ErrUpstreamUnavailable)
}

// backoff calculates the exponential delay for the given attempt with
// ±10% jitter to avoid thundering-herd retries across invocations.
func (r *RetryClient) backoff(attempt int) time.Duration {
	d := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffMultiplier, float64(attempt))

	if d > float64(r.config.MaxBackoff) {
		d = float64(r.config.MaxBackoff)
	}

	jitter := d * 0.1 * (2*float64(time.Now().UnixNano()%100)/100 - 1)
	d += jitter

	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
