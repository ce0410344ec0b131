// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"context"
	"iter"

	"github.com/poiesic/hownet/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// LexiconRepository stores the raw records of a lexicon. Records are
// returned in the order they were added, so a graph built from a store is
// identical to one built from the original record files.
type LexiconRepository interface {
	Repository

	// AddSememes appends sememe records to storage.
	AddSememes(ctx context.Context, records ...*core.SememeRecord) error

	// AddSenses appends sense records to storage.
	AddSenses(ctx context.Context, records ...*core.SenseRecord) error

	// AddRelations appends relation records to storage.
	AddRelations(ctx context.Context, records ...*core.RelationRecord) error

	// Sememes iterates over stored sememe records in insertion order.
	// Iteration stops at the first error, which is yielded with a nil record.
	Sememes(ctx context.Context) iter.Seq2[*core.SememeRecord, error]

	// Senses iterates over stored sense records in insertion order.
	Senses(ctx context.Context) iter.Seq2[*core.SenseRecord, error]

	// Relations iterates over stored relation records in insertion order.
	Relations(ctx context.Context) iter.Seq2[*core.RelationRecord, error]

	// Counts returns the number of stored records of each kind.
	Counts(ctx context.Context) (sememes, senses, relations int, err error)

	// Clear removes every stored record and the import manifest.
	Clear(ctx context.Context) error
}

// ManifestRepository persists the manifest describing the last import.
type ManifestRepository interface {
	// SaveManifest replaces the stored manifest.
	// Sets ImportedAt if not already set.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// LoadManifest returns the stored manifest.
	// Returns ErrNotFound if nothing has been imported.
	LoadManifest(ctx context.Context) (*core.Manifest, error)

	// DeleteManifest removes the stored manifest, marking the store as
	// holding no complete import. Deleting a missing manifest is not an error.
	DeleteManifest(ctx context.Context) error
}
