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
	"net/http"
	"time"

	"github.com/shurcooL/graphql"
	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
	"github.com/techatlashq/techatlas/internal/giterror"
)

// GraphQLClient implements the Client interface against GitHub's
// GraphQL API. One page request carries everything the extractor needs
// for a repository: languages ordered by size, default branch activity,
// and the HEAD tree with manifest blob contents.
type GraphQLClient struct {
	client    *graphql.Client
	inspector *giterror.Inspector
}

// NewGraphQLClient creates a GitHub GraphQL client with the provided
// token and endpoint. The client is configured with:
//   - Authentication via the provided token
//   - Custom GraphQL endpoint URL (e.g., for GitHub Enterprise)
//   - Rate-limit detection with reset hints
//   - Response size limiting to prevent memory issues
//   - Connection pooling tuned for sequential page fetches
func NewGraphQLClient(token, endpoint string) *GraphQLClient {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	httpClient := &http.Client{
		Transport: &authTransport{
			token: token,
			base:  transport,
		},
	}

	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, httpClient),
		inspector: giterror.NewInspector(),
	}
}

// repositoryNode mirrors one repository in the organization query. The
// tree selection pulls root blob texts for manifest scanning and one
// level of subtree names for CI layout detection.
type repositoryNode struct {
	Name             graphql.String
	URL              graphql.String `graphql:"url"`
	Visibility       graphql.String
	IsArchived       graphql.Boolean
	DefaultBranchRef *struct {
		Name   graphql.String
		Target struct {
			Commit struct {
				CommittedDate time.Time
			} `graphql:"... on Commit"`
		}
	}
	Languages struct {
		TotalSize graphql.Int
		Edges     []struct {
			Size graphql.Int
			Node struct {
				Name graphql.String
			}
		}
	} `graphql:"languages(first: 10, orderBy: {field: SIZE, direction: DESC})"`
	Root *struct {
		Tree struct {
			Entries []struct {
				Name   graphql.String
				Type   graphql.String
				Object *struct {
					Blob struct {
						Text graphql.String
					} `graphql:"... on Blob"`
					Tree struct {
						Entries []struct {
							Name graphql.String
						}
					} `graphql:"... on Tree"`
				}
			}
		} `graphql:"... on Tree"`
	} `graphql:"root: object(expression: \"HEAD:\")"`
	Codeowners *struct {
		Blob struct {
			Text graphql.String
		} `graphql:"... on Blob"`
	} `graphql:"codeowners: object(expression: \"HEAD:.github/CODEOWNERS\")"`
}

// FetchRepositoryPage fetches one page of the organization's repository
// list. The page size must be positive and at most MaxPageSize; values
// outside that range are rejected with ErrInvalidBatchSize rather than
// clamped silently, so misconfiguration is visible at the first page.
func (c *GraphQLClient) FetchRepositoryPage(ctx context.Context, org string, opts FetchOptions) (*RepositoryPage, error) {
	if opts.PageSize < 1 || opts.PageSize > MaxPageSize {
		return nil, fmt.Errorf("page size %d outside range 1..%d: %w",
			opts.PageSize, MaxPageSize, atlaserrors.ErrInvalidBatchSize)
	}

	var query struct {
		Organization struct {
			Repositories struct {
				PageInfo struct {
					HasNextPage graphql.Boolean
					EndCursor   graphql.String
				}
				Nodes []repositoryNode
			} `graphql:"repositories(first: $first, after: $after)"`
		} `graphql:"organization(login: $org)"`
	}

	variables := map[string]interface{}{
		"org":   graphql.String(org),
		"first": graphql.Int(int32(opts.PageSize)), // #nosec G115 - bounded by MaxPageSize
		"after": (*graphql.String)(nil),
	}
	if opts.After != "" {
		variables["after"] = graphql.String(opts.After)
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, org)
	}

	page := &RepositoryPage{
		HasNextPage:  bool(query.Organization.Repositories.PageInfo.HasNextPage),
		EndCursor:    string(query.Organization.Repositories.PageInfo.EndCursor),
		Repositories: make([]RepositoryRecord, 0, len(query.Organization.Repositories.Nodes)),
	}

	for i := range query.Organization.Repositories.Nodes {
		page.Repositories = append(page.Repositories,
			convertRepositoryNode(&query.Organization.Repositories.Nodes[i]))
	}

	return page, nil
}

// FetchOrgTeams retrieves the organization's teams. The first hundred
// teams cover every organization this runs against; CODEOWNERS entries
// referencing teams beyond that simply stay unmatched.
func (c *GraphQLClient) FetchOrgTeams(ctx context.Context, org string) ([]Team, error) {
	var query struct {
		Organization struct {
			Teams struct {
				Nodes []struct {
					Name graphql.String
					Slug graphql.String
				}
			} `graphql:"teams(first: 100)"`
		} `graphql:"organization(login: $org)"`
	}

	variables := map[string]interface{}{
		"org": graphql.String(org),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, org)
	}

	teams := make([]Team, 0, len(query.Organization.Teams.Nodes))
	for _, node := range query.Organization.Teams.Nodes {
		teams = append(teams, Team{
			Name: string(node.Name),
			Slug: string(node.Slug),
		})
	}

	return teams, nil
}

// convertRepositoryNode maps a GraphQL node to the domain record.
// Absent optional fields (empty repository, no default branch, no
// languages) produce zero values rather than errors.
func convertRepositoryNode(n *repositoryNode) RepositoryRecord {
	rec := RepositoryRecord{
		Name:       string(n.Name),
		URL:        string(n.URL),
		Visibility: string(n.Visibility),
		IsArchived: bool(n.IsArchived),
	}

	if n.DefaultBranchRef != nil {
		rec.DefaultBranch = string(n.DefaultBranchRef.Name)
		if !n.DefaultBranchRef.Target.Commit.CommittedDate.IsZero() {
			committed := n.DefaultBranchRef.Target.Commit.CommittedDate
			rec.LastCommit = &committed
		}
	}

	rec.TotalLanguageSize = int64(n.Languages.TotalSize)
	rec.Languages = make([]LanguageEdge, 0, len(n.Languages.Edges))
	for _, edge := range n.Languages.Edges {
		rec.Languages = append(rec.Languages, LanguageEdge{
			Name: string(edge.Node.Name),
			Size: int64(edge.Size),
		})
	}

	if n.Root != nil {
		rec.RootEntries = make([]TreeEntry, 0, len(n.Root.Tree.Entries))
		for _, entry := range n.Root.Tree.Entries {
			te := TreeEntry{
				Name: string(entry.Name),
				Type: string(entry.Type),
			}
			if entry.Object != nil {
				te.Text = string(entry.Object.Blob.Text)
				for _, child := range entry.Object.Tree.Entries {
					te.ChildNames = append(te.ChildNames, string(child.Name))
				}
			}
			rec.RootEntries = append(rec.RootEntries, te)
		}
	}

	if n.Codeowners != nil {
		rec.CodeownersText = string(n.Codeowners.Blob.Text)
	}

	return rec
}

// mapError maps GraphQL errors to domain errors with actionable messages.
func (c *GraphQLClient) mapError(err error, org string) error {
	if err == nil {
		return nil
	}

	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded while scanning %q: %w (%w)",
			org, err, atlaserrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API rejected the installation token for %q: %w",
			org, atlaserrors.ErrAuthRejected)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("organization %q not found or not visible to this token: %w",
			org, atlaserrors.ErrOrgNotFound)
	}

	if c.inspector.IsTransientError(err) {
		return fmt.Errorf("transient error talking to GitHub API: %v: %w",
			err, atlaserrors.ErrNetworkFailure)
	}

	return fmt.Errorf("failed to query organization %q: %w", org, err)
}
