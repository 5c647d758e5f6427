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

import "context"

// Client defines the interface for interacting with GitHub's API.
// This interface allows for easy mocking in tests.
type Client interface {
	// FetchRepositoryPage retrieves one page of the organization's
	// repository list. Cursor-based pagination via opts.After; the
	// returned page reports whether another page exists and the cursor
	// to request it with.
	FetchRepositoryPage(ctx context.Context, org string, opts FetchOptions) (*RepositoryPage, error)

	// FetchOrgTeams retrieves the organization's teams, used to match
	// CODEOWNERS references to team names.
	FetchOrgTeams(ctx context.Context, org string) ([]Team, error)
}
