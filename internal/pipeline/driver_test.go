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

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
	"github.com/techatlashq/techatlas/internal/github"
	"github.com/techatlashq/techatlas/internal/inventory"
	"github.com/techatlashq/techatlas/internal/secrets"
)

// captureWriter records written documents in memory.
type captureWriter struct {
	docs []*inventory.Document
	err  error
}

func (w *captureWriter) Write(ctx context.Context, doc *inventory.Document) error {
	if w.err != nil {
		return w.err
	}
	w.docs = append(w.docs, doc)
	return nil
}

func (w *captureWriter) Destination() string { return "memory" }

func staticCreds(token string) CredentialFunc {
	return func(ctx context.Context) (*secrets.Credential, error) {
		return secrets.StaticToken(token), nil
	}
}

func acmePages() []github.RepositoryPage {
	return []github.RepositoryPage{
		{
			Repositories: []github.RepositoryRecord{
				{
					Name:       "A",
					Visibility: "PRIVATE",
					Languages: []github.LanguageEdge{
						{Name: "Python", Size: 600},
						{Name: "Go", Size: 400},
					},
					TotalLanguageSize: 1000,
				},
				{
					Name:       "B",
					Visibility: "PUBLIC",
					Languages: []github.LanguageEdge{
						{Name: "Python", Size: 100},
					},
					TotalLanguageSize: 100,
				},
			},
			HasNextPage: true,
			EndCursor:   "c1",
		},
		{
			Repositories: []github.RepositoryRecord{
				{Name: "C", Visibility: "PRIVATE"},
			},
			HasNextPage: false,
		},
	}
}

func acmeDriver(mock *github.MockClient, writer DocumentWriter) *Driver {
	return &Driver{
		Org:         "acme",
		BatchSize:   2,
		Credentials: staticCreds("test-token"),
		NewClient:   func(token string) github.Client { return mock },
		Writer:      writer,
		Clock:       func() time.Time { return time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC) },
	}
}

func TestDriver_EndToEnd(t *testing.T) {
	// Three repositories across two pages of batch size two. A has
	// Python and Go, B has Python, C has nothing detected. The run
	// succeeds with exactly two page requests.
	mock := &github.MockClient{Pages: acmePages()}
	writer := &captureWriter{}

	doc, err := acmeDriver(mock, writer).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.PageCalls != 2 {
		t.Errorf("page calls = %d, want 2", mock.PageCalls)
	}
	for i, opts := range mock.SeenOpts {
		if opts.PageSize != 2 {
			t.Errorf("request %d page size = %d, want 2", i, opts.PageSize)
		}
	}

	if len(writer.docs) != 1 {
		t.Fatalf("documents written = %d, want 1", len(writer.docs))
	}
	if len(doc.Repositories) != 3 {
		t.Fatalf("repositories = %d, want 3", len(doc.Repositories))
	}

	byName := make(map[string][]inventory.Language)
	for _, repo := range doc.Repositories {
		byName[repo.Name] = repo.Technologies.Languages
	}
	if len(byName["A"]) != 2 || byName["A"][0].Name != "Python" || byName["A"][1].Name != "Go" {
		t.Errorf("repo A languages = %+v", byName["A"])
	}
	if len(byName["B"]) != 1 || byName["B"][0].Name != "Python" {
		t.Errorf("repo B languages = %+v", byName["B"])
	}
	if len(byName["C"]) != 0 {
		t.Errorf("repo C languages = %+v", byName["C"])
	}

	py := doc.LanguageStatsUnarchived["Python"]
	if py.RepoCount != 2 || py.TotalSize != 700 {
		t.Errorf("python stats = %+v", py)
	}
}

func TestDriver_Idempotent(t *testing.T) {
	// Identical upstream data and a fixed clock produce byte-identical
	// documents across runs.
	run := func() []byte {
		mock := &github.MockClient{Pages: acmePages()}
		writer := &captureWriter{}
		doc, err := acmeDriver(mock, writer).Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	first := run()
	second := run()
	if string(first) != string(second) {
		t.Error("reruns produced different documents")
	}
}

func TestDriver_NoArtifactOnCredentialFailure(t *testing.T) {
	mock := github.NewMockClient()
	writer := &captureWriter{}
	driver := acmeDriver(mock, writer)
	driver.Credentials = func(ctx context.Context) (*secrets.Credential, error) {
		return nil, fmt.Errorf("secret not found: %w", atlaserrors.ErrAuthResolution)
	}

	_, err := driver.Run(context.Background())
	if !errors.Is(err, atlaserrors.ErrAuthResolution) {
		t.Errorf("expected ErrAuthResolution, got %v", err)
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageInit {
		t.Errorf("expected init stage error, got %v", err)
	}
	if len(writer.docs) != 0 {
		t.Error("artifact written despite credential failure")
	}
	if mock.PageCalls != 0 {
		t.Error("pages fetched despite credential failure")
	}
}

func TestDriver_NoArtifactOnFetchFailure(t *testing.T) {
	mock := github.NewMockClient()
	mock.Err = fmt.Errorf("giving up after 5 attempts: %w", atlaserrors.ErrUpstreamUnavailable)
	writer := &captureWriter{}

	_, err := acmeDriver(mock, writer).Run(context.Background())
	if !errors.Is(err, atlaserrors.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(writer.docs) != 0 {
		t.Error("artifact written despite fetch failure")
	}
}

func TestDriver_WriteFailure(t *testing.T) {
	mock := &github.MockClient{Pages: acmePages()}
	writer := &captureWriter{err: fmt.Errorf("bucket missing: %w", atlaserrors.ErrPersistence)}

	_, err := acmeDriver(mock, writer).Run(context.Background())
	if !errors.Is(err, atlaserrors.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", err)
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageWriting {
		t.Errorf("expected writing stage error, got %v", err)
	}
}

func TestDriver_FetchErrorCarriesCursor(t *testing.T) {
	// The second page fails; the error must name the cursor the run
	// stopped at.
	client := &flakyClient{
		page: github.RepositoryPage{HasNextPage: true, EndCursor: "c1"},
	}
	writer := &captureWriter{}
	driver := acmeDriver(github.NewMockClient(), writer)
	driver.NewClient = func(token string) github.Client { return client }

	_, err := driver.Run(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Stage != StageFetching || stageErr.Cursor != "c1" {
		t.Errorf("stage/cursor = %s/%q, want fetching/c1", stageErr.Stage, stageErr.Cursor)
	}
}

func TestDriver_CursorMustAdvance(t *testing.T) {
	client := &stuckClient{}
	writer := &captureWriter{}
	driver := acmeDriver(github.NewMockClient(), writer)
	driver.NewClient = func(token string) github.Client { return client }

	_, err := driver.Run(context.Background())
	if !errors.Is(err, atlaserrors.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if client.calls > 2 {
		t.Errorf("stuck cursor looped %d times", client.calls)
	}
	if len(writer.docs) != 0 {
		t.Error("artifact written despite pagination failure")
	}
}

func TestDriver_DeadlineExceeded(t *testing.T) {
	mock := github.NewMockClient()
	writer := &captureWriter{}
	driver := acmeDriver(mock, writer)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := driver.Run(ctx)
	if !errors.Is(err, atlaserrors.ErrDeadlineExceeded) {
		t.Errorf("expected ErrDeadlineExceeded, got %v", err)
	}
	if len(writer.docs) != 0 {
		t.Error("artifact written despite blown deadline")
	}
}

func TestDriver_TeamFailureIsNotFatal(t *testing.T) {
	mock := &github.MockClient{Pages: acmePages()}
	writer := &captureWriter{}
	driver := acmeDriver(mock, writer)
	driver.NewClient = func(token string) github.Client {
		return &teamlessClient{inner: mock}
	}

	doc, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("team failure aborted the run: %v", err)
	}
	if len(doc.Repositories) != 3 {
		t.Errorf("repositories = %d, want 3", len(doc.Repositories))
	}
}

// flakyClient serves one page then fails.
type flakyClient struct {
	page  github.RepositoryPage
	calls int
}

func (c *flakyClient) FetchRepositoryPage(ctx context.Context, org string, opts github.FetchOptions) (*github.RepositoryPage, error) {
	c.calls++
	if c.calls == 1 {
		page := c.page
		return &page, nil
	}
	return nil, fmt.Errorf("giving up after retries: %w", atlaserrors.ErrUpstreamUnavailable)
}

func (c *flakyClient) FetchOrgTeams(ctx context.Context, org string) ([]github.Team, error) {
	return nil, nil
}

// stuckClient always returns the same non-advancing cursor.
type stuckClient struct {
	calls int
}

func (c *stuckClient) FetchRepositoryPage(ctx context.Context, org string, opts github.FetchOptions) (*github.RepositoryPage, error) {
	c.calls++
	return &github.RepositoryPage{HasNextPage: true, EndCursor: "same"}, nil
}

func (c *stuckClient) FetchOrgTeams(ctx context.Context, org string) ([]github.Team, error) {
	return nil, nil
}

// teamlessClient fails team lookups but forwards page fetches.
type teamlessClient struct {
	inner github.Client
}

func (c *teamlessClient) FetchRepositoryPage(ctx context.Context, org string, opts github.FetchOptions) (*github.RepositoryPage, error) {
	return c.inner.FetchRepositoryPage(ctx, org, opts)
}

func (c *teamlessClient) FetchOrgTeams(ctx context.Context, org string) ([]github.Team, error) {
	return nil, errors.New("teams forbidden for this token")
}
