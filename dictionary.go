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

// Package hownet answers lexical-semantic queries over a sememe knowledge
// base: sense and sememe lookup, relation listing, sememe trees, word
// similarity and nearest-word search.
//
// A Dictionary wraps one immutable graph. Build it from record files with
// LoadFiles, from a lexicon store written by the importer with Open, or from
// an existing graph with New. Every query is a pure read and safe for
// concurrent use. Absent words, senses and sememes give empty results;
// malformed parameters give an error matching core.ErrInvalidQuery.
package hownet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
	"github.com/poiesic/hownet/lexicon"
	"github.com/poiesic/hownet/metrics"
	"github.com/poiesic/hownet/similarity"
	"github.com/poiesic/hownet/storage"
	"github.com/poiesic/hownet/storage/badger"
	"github.com/poiesic/hownet/tree"
)

// Dictionary is the query surface over one loaded lexicon.
type Dictionary struct {
	graph    *graph.Graph
	cfg      *config.Config
	trees    *tree.Builder
	engine   *similarity.Engine
	manifest *core.Manifest
	logger   *slog.Logger

	// set when opened from a lexicon store
	backend *badger.Backend
	repo    storage.LexiconRepository
}

// Option configures a Dictionary.
type Option func(*options)

type options struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
}

// WithConfig sets the configuration. Default is config.DefaultConfig().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// WithRecorder sets the metrics recorder shared by loading and similarity.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(o *options) {
		o.recorder = metrics.OrNoop(recorder)
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{
		cfg:      config.DefaultConfig(),
		logger:   slog.Default(),
		recorder: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *options) loader() (*lexicon.Loader, error) {
	return lexicon.NewLoader(
		lexicon.WithStrictReferences(o.cfg.StrictReferences),
		lexicon.WithLogger(o.logger),
		lexicon.WithRecorder(o.recorder),
	)
}

// New creates a Dictionary over an already built graph.
func New(g *graph.Graph, opts ...Option) (*Dictionary, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newDictionary(g, o)
}

func newDictionary(g *graph.Graph, o *options) (*Dictionary, error) {
	if g == nil {
		return nil, errors.New("hownet: graph is required")
	}
	rel, err := o.cfg.Expansion()
	if err != nil {
		return nil, err
	}
	trees, err := tree.NewBuilder(g, tree.WithRelation(rel), tree.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	engine, err := similarity.NewEngine(g,
		similarity.WithConfig(o.cfg),
		similarity.WithLogger(o.logger),
		similarity.WithRecorder(o.recorder))
	if err != nil {
		return nil, err
	}
	return &Dictionary{
		graph:  g,
		cfg:    o.cfg,
		trees:  trees,
		engine: engine,
		logger: o.logger,
	}, nil
}

// LoadFiles loads a Dictionary from lexicon record files.
func LoadFiles(files lexicon.Files, opts ...Option) (*Dictionary, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	loader, err := o.loader()
	if err != nil {
		return nil, err
	}
	g, err := loader.LoadFiles(files)
	if err != nil {
		return nil, err
	}
	return newDictionary(g, o)
}

// Open loads a Dictionary from the lexicon store at filePath. The store
// stays open until Close. A store whose content no longer matches the
// manifest written by its import is refused with storage.ErrManifestMismatch.
func Open(ctx context.Context, filePath string, opts ...Option) (*Dictionary, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	repo, manifests, backend, err := badger.OpenRepositories(filePath,
		badger.WithLogger(o.logger.With("component", "badger")))
	if err != nil {
		return nil, err
	}
	closeStore := func() {
		repo.Close()
		backend.Close()
	}

	manifest, err := manifests.LoadManifest(ctx)
	if err != nil {
		closeStore()
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("no lexicon imported at %s: %w", filePath, err)
		}
		return nil, err
	}

	sememes, senses, relations, err := repo.Counts(ctx)
	if err != nil {
		closeStore()
		return nil, err
	}
	if sememes != manifest.Sememes || senses != manifest.Senses || relations != manifest.Relations {
		closeStore()
		return nil, fmt.Errorf("%w: %s holds %d sememes, %d senses and %d relations, manifest records %d, %d and %d",
			storage.ErrManifestMismatch, filePath, sememes, senses, relations,
			manifest.Sememes, manifest.Senses, manifest.Relations)
	}

	loader, err := o.loader()
	if err != nil {
		closeStore()
		return nil, err
	}
	g, err := loader.LoadRepository(ctx, repo)
	if err != nil {
		closeStore()
		return nil, err
	}
	if g.Fingerprint() != manifest.Fingerprint {
		closeStore()
		return nil, fmt.Errorf("%w: %s fingerprint %016x, manifest %016x",
			storage.ErrManifestMismatch, filePath,
			uint64(g.Fingerprint()), uint64(manifest.Fingerprint))
	}

	d, err := newDictionary(g, o)
	if err != nil {
		closeStore()
		return nil, err
	}
	d.manifest = manifest
	d.backend = backend
	d.repo = repo
	return d, nil
}

// Close releases the worker pool and, when opened from a store, the store.
func (d *Dictionary) Close() error {
	d.engine.Release()
	if d.backend == nil {
		return nil
	}
	if err := d.repo.Close(); err != nil {
		d.logger.Error("error closing lexicon repository", "err", err)
		return err
	}
	if err := d.backend.Close(); err != nil {
		d.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Graph returns the underlying graph.
func (d *Dictionary) Graph() *graph.Graph {
	return d.graph
}

// Config returns the configuration in use.
func (d *Dictionary) Config() *config.Config {
	return d.cfg
}

// Manifest returns the import manifest of the store the Dictionary was
// opened from, or nil.
func (d *Dictionary) Manifest() *core.Manifest {
	return d.manifest
}

// Stats summarises the loaded graph.
func (d *Dictionary) Stats() core.Stats {
	return d.graph.Stats()
}
