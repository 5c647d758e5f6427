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

// Package artifact persists the inventory document. A Store commits a
// named blob; the Writer serializes the document and picks the
// destination key. Every run fully replaces the previous artifact.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Store durably persists a named blob. Implementations back onto S3 in
// production and the local filesystem everywhere else.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	// Destination describes where a key lands, for logging.
	Destination(key string) string
}

// LocalStore writes artifacts to the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a store rooted at dir. An empty dir selects the
// working directory.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Put writes the blob via a temp file and rename so a crashed run never
// leaves a truncated artifact behind.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	path := s.path(key)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit artifact: %w", err)
	}
	return nil
}

// Destination implements the Store interface.
func (s *LocalStore) Destination(key string) string {
	return s.path(key)
}

func (s *LocalStore) path(key string) string {
	if s.dir == "" {
		return key
	}
	return filepath.Join(s.dir, key)
}
