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

	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
)

// MockClient is an in-memory implementation of the Client interface for
// testing. Pages are served in order from Pages; calls and options are
// recorded for verification.
type MockClient struct {
	// Pages to serve, one per FetchRepositoryPage call.
	Pages []RepositoryPage

	// Teams to return from FetchOrgTeams.
	Teams []Team

	// Error to return from every call when set.
	Err error

	// FailPageFetches makes the first N page fetches fail with FailErr
	// before succeeding, to exercise retry paths.
	FailPageFetches int
	FailErr         error

	// Behavior flags
	ShouldFailAuth bool

	// Recorded calls for verification
	PageCalls  int
	TeamCalls  int
	LastOrg    string
	SeenOpts   []FetchOptions
	nextPage   int
	totalFails int
}

// NewMockClient creates a mock serving a single empty final page.
func NewMockClient() *MockClient {
	return &MockClient{
		Pages: []RepositoryPage{{HasNextPage: false}},
	}
}

// FetchRepositoryPage implements the Client interface.
func (m *MockClient) FetchRepositoryPage(ctx context.Context, org string, opts FetchOptions) (*RepositoryPage, error) {
	m.PageCalls++
	m.LastOrg = org
	m.SeenOpts = append(m.SeenOpts, opts)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.ShouldFailAuth {
		return nil, fmt.Errorf("authentication failed: %w", atlaserrors.ErrAuthRejected)
	}

	if m.totalFails < m.FailPageFetches {
		m.totalFails++
		err := m.FailErr
		if err == nil {
			err = fmt.Errorf("mock transient failure %d", m.totalFails)
		}
		return nil, err
	}

	if m.Err != nil {
		return nil, m.Err
	}

	if m.nextPage >= len(m.Pages) {
		return nil, fmt.Errorf("mock exhausted: page %d requested, have %d", m.nextPage, len(m.Pages))
	}

	page := m.Pages[m.nextPage]
	m.nextPage++
	return &page, nil
}

// FetchOrgTeams implements the Client interface.
func (m *MockClient) FetchOrgTeams(ctx context.Context, org string) ([]Team, error) {
	m.TeamCalls++
	m.LastOrg = org

	if m.ShouldFailAuth {
		return nil, fmt.Errorf("authentication failed: %w", atlaserrors.ErrAuthRejected)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Teams, nil
}
