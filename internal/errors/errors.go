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

// Package errors defines sentinel errors for consistent error handling across
// the application. These errors map to specific exit codes in the CLI for
// proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrAuthResolution indicates the credential payload could not be
	// obtained from the secret store or could not be parsed. This is a
	// configuration error and is never retried.
	// Maps to exit code 2.
	ErrAuthResolution = errors.New("credential resolution failed")

	// ErrAuthRejected indicates GitHub rejected the resolved credentials
	// (401/403). Never retried.
	// Maps to exit code 2.
	ErrAuthRejected = errors.New("github credentials rejected")

	// ErrOrgNotFound indicates the organization does not exist or is not
	// visible with the supplied credentials.
	// Maps to exit code 2.
	ErrOrgNotFound = errors.New("organization not found")

	// ErrInvalidBatchSize indicates the configured page size is not a
	// positive integer within GitHub's API limits.
	// Maps to exit code 2.
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Retried with backoff; reset hints shorten or stretch the wait.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrNetworkFailure indicates a transient network or server-side
	// problem. Retried with backoff.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrUpstreamUnavailable indicates transient upstream failures
	// persisted past the retry budget. The run aborts without writing
	// any artifact.
	// Maps to exit code 3.
	ErrUpstreamUnavailable = errors.New("github api unavailable")

	// ErrPersistence indicates the computed inventory could not be
	// committed to its destination. The run fails as a whole.
	// Maps to exit code 4.
	ErrPersistence = errors.New("artifact persistence failed")

	// ErrDeadlineExceeded indicates the overall invocation deadline
	// expired before the run completed.
	// Maps to exit code 3.
	ErrDeadlineExceeded = errors.New("run deadline exceeded")
)
