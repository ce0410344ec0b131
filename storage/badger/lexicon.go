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

package badger

import (
	"context"
	"errors"
	"iter"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/storage"
)

// recordTable stores one record kind under a key prefix, ordered by an
// insertion sequence.
type recordTable[T any] struct {
	backend   *Backend
	prefix    string
	seq       *badger.Sequence
	marshal   func(*T) []byte
	unmarshal func([]byte) (*T, error)
}

func newRecordTable[T any](backend *Backend, prefix, seqName string, marshal func(*T) []byte, unmarshal func([]byte) (*T, error)) (*recordTable[T], error) {
	seq, err := backend.GetSequence(seqName)
	if err != nil {
		return nil, err
	}
	return &recordTable[T]{
		backend:   backend,
		prefix:    prefix,
		seq:       seq,
		marshal:   marshal,
		unmarshal: unmarshal,
	}, nil
}

func (t *recordTable[T]) add(ctx context.Context, records []*T) error {
	if len(records) == 0 {
		return nil
	}
	return t.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			next, err := t.seq.Next()
			if err != nil {
				return err
			}
			if err := tx.Set(makeRecordKey(t.prefix, next), t.marshal(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func (t *recordTable[T]) scan(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		err := t.backend.WithTx(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(t.prefix)
			it := tx.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}
				var record *T
				err := it.Item().Value(func(val []byte) error {
					var err error
					record, err = t.unmarshal(val)
					return err
				})
				if err != nil {
					return err
				}
				if !yield(record, nil) {
					return nil
				}
			}
			return nil
		}, false)
		if err != nil {
			yield(nil, err)
		}
	}
}

func (t *recordTable[T]) count() (int, error) {
	return t.backend.CountPrefix(t.prefix)
}

// LexiconRepository implements storage.LexiconRepository for BadgerDB.
type LexiconRepository struct {
	backend   *Backend
	sememes   *recordTable[core.SememeRecord]
	senses    *recordTable[core.SenseRecord]
	relations *recordTable[core.RelationRecord]
}

var _ storage.LexiconRepository = (*LexiconRepository)(nil)

// NewLexiconRepository creates a new LexiconRepository.
func NewLexiconRepository(backend *Backend) (*LexiconRepository, error) {
	sememes, err := newRecordTable(backend, sememeRecordPrefix, sememeSeq,
		storage.MarshalSememeRecord, storage.UnmarshalSememeRecord)
	if err != nil {
		return nil, err
	}
	senses, err := newRecordTable(backend, senseRecordPrefix, senseSeq,
		storage.MarshalSenseRecord, storage.UnmarshalSenseRecord)
	if err != nil {
		sememes.seq.Release()
		return nil, err
	}
	relations, err := newRecordTable(backend, relationRecordPrefix, relationSeq,
		storage.MarshalRelationRecord, storage.UnmarshalRelationRecord)
	if err != nil {
		sememes.seq.Release()
		senses.seq.Release()
		return nil, err
	}

	return &LexiconRepository{
		backend:   backend,
		sememes:   sememes,
		senses:    senses,
		relations: relations,
	}, nil
}

// Close releases the insertion sequences. The backend stays open.
func (r *LexiconRepository) Close() error {
	return errors.Join(
		r.sememes.seq.Release(),
		r.senses.seq.Release(),
		r.relations.seq.Release(),
	)
}

// WithTransaction delegates to the backend.
func (r *LexiconRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSememes appends sememe records to storage.
func (r *LexiconRepository) AddSememes(ctx context.Context, records ...*core.SememeRecord) error {
	return r.sememes.add(ctx, records)
}

// AddSenses appends sense records to storage.
func (r *LexiconRepository) AddSenses(ctx context.Context, records ...*core.SenseRecord) error {
	return r.senses.add(ctx, records)
}

// AddRelations appends relation records to storage.
func (r *LexiconRepository) AddRelations(ctx context.Context, records ...*core.RelationRecord) error {
	return r.relations.add(ctx, records)
}

// Sememes iterates over stored sememe records in insertion order.
func (r *LexiconRepository) Sememes(ctx context.Context) iter.Seq2[*core.SememeRecord, error] {
	return r.sememes.scan(ctx)
}

// Senses iterates over stored sense records in insertion order.
func (r *LexiconRepository) Senses(ctx context.Context) iter.Seq2[*core.SenseRecord, error] {
	return r.senses.scan(ctx)
}

// Relations iterates over stored relation records in insertion order.
func (r *LexiconRepository) Relations(ctx context.Context) iter.Seq2[*core.RelationRecord, error] {
	return r.relations.scan(ctx)
}

// Counts returns the number of stored records of each kind.
func (r *LexiconRepository) Counts(ctx context.Context) (sememes, senses, relations int, err error) {
	if sememes, err = r.sememes.count(); err != nil {
		return
	}
	if senses, err = r.senses.count(); err != nil {
		return
	}
	relations, err = r.relations.count()
	return
}

// Clear removes every stored record and the manifest, so a store cleared
// by an interrupted import never looks complete.
func (r *LexiconRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.backend.DropPrefix(manifestKey, sememeRecordPrefix, senseRecordPrefix, relationRecordPrefix)
}
