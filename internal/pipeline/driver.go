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

// Package pipeline owns the control flow of one inventory run: resolve
// credentials, page through the organization's repositories, extract
// and aggregate technology signals, and commit the artifact. Run state
// lives only for the duration of one invocation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/techatlashq/techatlas/internal/artifact"
	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
	"github.com/techatlashq/techatlas/internal/github"
	"github.com/techatlashq/techatlas/internal/inventory"
	"github.com/techatlashq/techatlas/internal/secrets"
)

// Stage identifies where in the run an error occurred.
type Stage string

const (
	StageInit          Stage = "init"
	StageAuthenticated Stage = "authenticated"
	StageFetching      Stage = "fetching"
	StageWriting       Stage = "writing"
	StageDone          Stage = "done"
)

// StageError carries the stage and cursor position of a failed run so
// failures can be diagnosed without a rerun.
type StageError struct {
	Stage  Stage
	Cursor string
	Err    error
}

func (e *StageError) Error() string {
	if e.Cursor != "" {
		return fmt.Sprintf("stage %s (cursor %q): %v", e.Stage, e.Cursor, e.Err)
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// CredentialFunc resolves the API credential for the run.
type CredentialFunc func(ctx context.Context) (*secrets.Credential, error)

// ClientFactory builds the GitHub client once the token is known.
type ClientFactory func(token string) github.Client

// DocumentWriter commits the finished inventory document.
type DocumentWriter interface {
	Write(ctx context.Context, doc *inventory.Document) error
	Destination() string
}

// Driver runs the harvesting pipeline. It owns all run state; nothing
// is shared across invocations or persisted between runs.
type Driver struct {
	Org       string
	BatchSize int

	Credentials CredentialFunc
	NewClient   ClientFactory
	Writer      DocumentWriter
	Catalog     *inventory.Catalog

	Log *slog.Logger

	// Clock stamps the document; nil selects time.Now.
	Clock func() time.Time
}

// Run executes one complete inventory pass. The returned document has
// already been persisted when the error is nil; no artifact is written
// on any failure path.
func (d *Driver) Run(ctx context.Context) (*inventory.Document, error) {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	batchSize := d.BatchSize
	if batchSize <= 0 {
		batchSize = github.DefaultPageSize
	}

	if d.Org == "" {
		return nil, d.fail(StageInit, "", fmt.Errorf("organization is empty: %w", atlaserrors.ErrAuthResolution))
	}

	log.Info("starting inventory run", "org", d.Org, "batch_size", batchSize)

	cred, err := d.Credentials(ctx)
	if err != nil {
		return nil, d.fail(StageInit, "", err)
	}
	client := d.NewClient(cred.Token)

	// Team lookup failing only costs CODEOWNERS attribution, not the run.
	teams, err := client.FetchOrgTeams(ctx, d.Org)
	if err != nil {
		log.Warn("could not fetch organization teams, skipping CODEOWNERS matching", "error", err)
		teams = nil
	} else {
		log.Info("fetched organization teams", "count", len(teams))
	}

	extractor := inventory.NewExtractor(d.Org, teams, d.Catalog)
	aggregator := inventory.NewAggregator()

	cursor := ""
	pages := 0
	for {
		page, err := client.FetchRepositoryPage(ctx, d.Org, github.FetchOptions{
			PageSize: batchSize,
			After:    cursor,
		})
		if err != nil {
			return nil, d.fail(StageFetching, cursor, err)
		}
		pages++

		for _, rec := range page.Repositories {
			aggregator.Add(extractor.Extract(rec))
		}
		log.Info("processed page",
			"page", pages, "repos", len(page.Repositories), "total", aggregator.Count())

		if !page.HasNextPage {
			break
		}
		if page.EndCursor == "" || page.EndCursor == cursor {
			return nil, d.fail(StageFetching, cursor,
				fmt.Errorf("pagination cursor did not advance: %w", atlaserrors.ErrUpstreamUnavailable))
		}
		cursor = page.EndCursor
	}

	doc := aggregator.Finalize(d.Org, batchSize, clock())

	log.Info("writing inventory artifact",
		"destination", d.Writer.Destination(), "repos", len(doc.Repositories))
	if err := d.Writer.Write(ctx, doc); err != nil {
		return nil, d.fail(StageWriting, "", err)
	}

	log.Info("inventory run complete", "repos", len(doc.Repositories), "pages", pages)
	return doc, nil
}

// fail wraps an error with stage and cursor context. A blown invocation
// deadline is surfaced as ErrDeadlineExceeded rather than a retryable
// upstream failure.
func (d *Driver) fail(stage Stage, cursor string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, atlaserrors.ErrDeadlineExceeded) {
		err = fmt.Errorf("%v: %w", err, atlaserrors.ErrDeadlineExceeded)
	}
	return &StageError{Stage: stage, Cursor: cursor, Err: err}
}

// NewWriterDriver is a convenience constructor wiring an artifact
// writer as the document sink.
func NewWriterDriver(org string, batchSize int, creds CredentialFunc, factory ClientFactory, w *artifact.Writer, log *slog.Logger) *Driver {
	return &Driver{
		Org:         org,
		BatchSize:   batchSize,
		Credentials: creds,
		NewClient:   factory,
		Writer:      w,
		Log:         log,
	}
}
