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

package artifact

import (
	"context"
	"encoding/json"
	"fmt"

	atlaserrors "github.com/techatlashq/techatlas/internal/errors"
	"github.com/techatlashq/techatlas/internal/inventory"
)

// Writer serializes the inventory document and commits it to its
// store. The destination (S3 or local) is fixed at construction time.
type Writer struct {
	store Store
	key   string
}

// NewWriter creates a Writer committing to key in the given store.
func NewWriter(store Store, key string) *Writer {
	return &Writer{store: store, key: key}
}

// Write serializes doc as indented UTF-8 JSON and replaces the artifact
// at the destination key. Struct field order keeps key ordering stable
// across runs so artifacts diff cleanly. Failures wrap ErrPersistence;
// an inventory that was computed but not persisted counts as a failed
// run.
func (w *Writer) Write(ctx context.Context, doc *inventory.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize inventory: %v: %w", err, atlaserrors.ErrPersistence)
	}
	data = append(data, '\n')

	if err := w.store.Put(ctx, w.key, data); err != nil {
		return fmt.Errorf("failed to persist inventory to %s: %v: %w",
			w.store.Destination(w.key), err, atlaserrors.ErrPersistence)
	}
	return nil
}

// Destination reports where the artifact will be written.
func (w *Writer) Destination() string {
	return w.store.Destination(w.key)
}
