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
	"testing"
)

func TestMockClient_PaginationTerminates(t *testing.T) {
	// Three pages ending in hasNextPage=false: the loop must visit each
	// page exactly once and stop.
	mock := &MockClient{
		Pages: []RepositoryPage{
			{Repositories: []RepositoryRecord{{Name: "a"}, {Name: "b"}}, HasNextPage: true, EndCursor: "c1"},
			{Repositories: []RepositoryRecord{{Name: "c"}, {Name: "d"}}, HasNextPage: true, EndCursor: "c2"},
			{Repositories: []RepositoryRecord{{Name: "e"}}, HasNextPage: false},
		},
	}

	var names []string
	cursor := ""
	for {
		page, err := mock.FetchRepositoryPage(context.Background(), "acme", FetchOptions{PageSize: 2, After: cursor})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, r := range page.Repositories {
			names = append(names, r.Name)
		}
		if !page.HasNextPage {
			break
		}
		cursor = page.EndCursor
	}

	if mock.PageCalls != 3 {
		t.Errorf("page calls = %d, want 3", mock.PageCalls)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestMockClient_RecordsBatchSize(t *testing.T) {
	mock := NewMockClient()

	_, err := mock.FetchRepositoryPage(context.Background(), "acme", FetchOptions{PageSize: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.SeenOpts) != 1 {
		t.Fatalf("seen opts = %d, want 1", len(mock.SeenOpts))
	}
	if mock.SeenOpts[0].PageSize != 30 {
		t.Errorf("page size = %d, want 30", mock.SeenOpts[0].PageSize)
	}
	if mock.LastOrg != "acme" {
		t.Errorf("org = %q, want acme", mock.LastOrg)
	}
}

func TestMockClient_CursorsAdvance(t *testing.T) {
	mock := &MockClient{
		Pages: []RepositoryPage{
			{HasNextPage: true, EndCursor: "c1"},
			{HasNextPage: false},
		},
	}

	first, err := mock.FetchRepositoryPage(context.Background(), "acme", FetchOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := mock.FetchRepositoryPage(context.Background(), "acme", FetchOptions{PageSize: 2, After: first.EndCursor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.SeenOpts[1].After != "c1" {
		t.Errorf("second request cursor = %q, want c1", mock.SeenOpts[1].After)
	}
	if second.HasNextPage {
		t.Error("final page must report no next page")
	}
}
