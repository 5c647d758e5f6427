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

// Package github implements the paginated query engine over GitHub's
// GraphQL API. It walks an organization's repository list one page at a
// time via cursor-based pagination, returning raw repository records
// (languages, default branch, root tree) for the extractor to process.
//
// The package exposes a narrow Client interface so the pipeline can be
// tested against in-memory fakes, a GraphQLClient production
// implementation, and a RetryClient decorator that applies an explicit
// backoff policy to transient failures.
package github
