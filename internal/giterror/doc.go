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

// Package giterror classifies errors returned by the GitHub API into the
// categories the retry policy cares about: authorization failures (never
// retried), missing organizations (never retried), rate limits (retried,
// honoring a reset hint when the response carried one), and transient
// network or server failures (retried on the generic backoff schedule).
//
// GitHub surfaces most failures as HTTP status text or GraphQL error
// messages, so classification is string-based with a typed-error fast
// path for rate limits detected at the transport layer.
package giterror
