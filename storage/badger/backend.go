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
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/hownet/storage"
)

// sequenceLease is how many sequence values are leased per disk write.
const sequenceLease = 100

// Backend owns the BadgerDB instance behind a lexicon store.
type Backend struct {
	db     *badger.DB
	path   string
	logger *slog.Logger
}

// Option configures how a Backend is opened.
type Option func(*openOptions) error

type openOptions struct {
	inMemory    bool
	syncWrites  bool
	compression options.CompressionType
	logger      *slog.Logger
}

// WithInMemory keeps the store in memory. The path is ignored.
func WithInMemory() Option {
	return func(o *openOptions) error {
		o.inMemory = true
		return nil
	}
}

// WithSyncWrites makes every commit wait for an fsync.
func WithSyncWrites(sync bool) Option {
	return func(o *openOptions) error {
		o.syncWrites = sync
		return nil
	}
}

// WithCompression selects the block compression. Default is ZSTD.
func WithCompression(c options.CompressionType) Option {
	return func(o *openOptions) error {
		switch c {
		case options.None, options.Snappy, options.ZSTD:
			o.compression = c
			return nil
		}
		return fmt.Errorf("unknown compression type %d", c)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default() tagged with component=badger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

// slogAdapter routes badger's printf-style logging into slog. Badger's
// info output is demoted to debug since it reports every table it opens.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(format string, args ...any) {
	a.logger.Error(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Infof(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

func (a *slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

// ensureDir creates path if needed and checks that it is a directory.
func ensureDir(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return err
		}
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// OpenBackend opens the store at filePath, creating the directory when it
// does not exist.
func OpenBackend(filePath string, opts ...Option) (*Backend, error) {
	o := &openOptions{
		compression: options.ZSTD,
		logger:      slog.Default().With("component", "badger"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	var bopts badger.Options
	if o.inMemory {
		filePath = ""
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if filePath == "" {
			return nil, errors.New("store path is required")
		}
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		bopts = badger.DefaultOptions(filePath).WithSyncWrites(o.syncWrites)
	}
	bopts = bopts.
		WithLogger(&slogAdapter{logger: o.logger}).
		WithCompression(o.compression)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", filePath, err)
	}
	o.logger.Debug("Opened lexicon store", "path", filePath, "in_memory", o.inMemory)

	return &Backend{db: db, path: filePath, logger: o.logger}, nil
}

// Path returns the store directory, empty for an in-memory store.
func (b *Backend) Path() string {
	return b.path
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn in a read-only or read-write transaction. The
// transaction is discarded on return; fn commits writes itself.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// GetSequence returns the named key sequence.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	if b.db.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return b.db.GetSequence([]byte(name), sequenceLease)
}

// WithTransaction runs fn and commits a write transaction when it succeeds.
// Implements storage.Repository.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CountPrefix counts the keys starting with prefix without reading values.
func (b *Backend) CountPrefix(prefix string) (int, error) {
	count := 0
	err := b.WithTx(func(tx *badger.Txn) error {
		it := tx.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// DropPrefix removes every key starting with one of the prefixes.
func (b *Backend) DropPrefix(prefixes ...string) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	raw := make([][]byte, len(prefixes))
	for i, p := range prefixes {
		raw[i] = []byte(p)
	}
	if err := b.db.DropPrefix(raw...); err != nil {
		return err
	}
	b.logger.Debug("Dropped key prefixes", "prefixes", prefixes)
	return nil
}

// OpenRepositories opens the store at filePath with the lexicon and
// manifest repositories over it. The caller closes the lexicon repository
// and then the backend.
func OpenRepositories(filePath string, opts ...Option) (storage.LexiconRepository, storage.ManifestRepository, *Backend, error) {
	backend, err := OpenBackend(filePath, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	lexiconRepo, err := NewLexiconRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	return lexiconRepo, NewManifestRepository(backend), backend, nil
}
