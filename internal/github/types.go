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

import "time"

// RepositoryRecord is one raw repository node as returned by the
// organization repositories query. It carries everything the extractor
// needs in a single page request: language byte counts, default branch
// activity, and the root tree with manifest blob contents.
type RepositoryRecord struct {
	Name          string
	URL           string
	Visibility    string
	IsArchived    bool
	DefaultBranch string

	// LastCommit is the committed date of the default branch head.
	// Nil when the repository is empty or has no default branch.
	LastCommit *time.Time

	// Languages ordered by size descending, as GitHub returns them.
	Languages         []LanguageEdge
	TotalLanguageSize int64

	// RootEntries are the entries of the HEAD tree. Blob entries for
	// recognized manifests carry their text; subtree entries carry the
	// names of their children.
	RootEntries []TreeEntry

	// CodeownersText is the content of .github/CODEOWNERS when present.
	// A root-level CODEOWNERS arrives through RootEntries instead.
	CodeownersText string
}

// LanguageEdge is one detected language with its byte count.
type LanguageEdge struct {
	Name string
	Size int64
}

// TreeEntry is a single entry of a git tree. Type is "blob" or "tree".
type TreeEntry struct {
	Name string
	Type string

	// Text is the blob content, populated only for root-level blobs.
	Text string

	// ChildNames lists the entry names of a subtree, one level deep.
	ChildNames []string
}

// RepositoryPage is one page of repository records plus the pagination
// state needed to fetch the next page.
type RepositoryPage struct {
	Repositories []RepositoryRecord
	HasNextPage  bool
	EndCursor    string
}

// Team is an organization team, used to resolve CODEOWNERS references.
type Team struct {
	Name string
	Slug string
}

// FetchOptions configures a single page request.
type FetchOptions struct {
	// PageSize is the number of repositories to request. Must be
	// positive and at most MaxPageSize; the engine rejects anything
	// else rather than send an unbounded request.
	PageSize int

	// After is the pagination cursor. Empty fetches from the beginning.
	After string
}

// MaxPageSize is GitHub's per-page limit for the repositories connection.
const MaxPageSize = 100

// DefaultPageSize is used when no batch size is configured.
const DefaultPageSize = 30
