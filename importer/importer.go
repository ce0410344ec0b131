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

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/lexicon"
	"github.com/poiesic/hownet/metrics"
	"github.com/poiesic/hownet/storage"
)

// Config holds configuration for an import.
type Config struct {
	// BatchSize is the number of records written in each transaction
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each batch write
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Replace clears a store that already holds records before importing
	Replace bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      500,
		ReportInterval: 5000,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("import config: BatchSize must be greater than 0")
	}
	if c.ReportInterval <= 0 {
		return errors.New("import config: ReportInterval must be greater than 0")
	}
	if c.MaxRetries <= 0 {
		return errors.New("import config: MaxRetries must be greater than 0")
	}
	if c.RetryDelay < 0 {
		return errors.New("import config: RetryDelay must be non-negative")
	}
	return nil
}

// Importer copies lexicon records into a lexicon store.
type Importer struct {
	repo      storage.LexiconRepository
	manifests storage.ManifestRepository
	loader    *lexicon.Loader
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
	recorder  metrics.Recorder
}

// Option configures an Importer.
type Option func(*Importer) error

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(i *Importer) error {
		i.recorder = metrics.OrNoop(recorder)
		return nil
	}
}

// WithLoader sets the loader used to check records before they are
// written, and so the reference policy of the import.
func WithLoader(loader *lexicon.Loader) Option {
	return func(i *Importer) error {
		if loader == nil {
			return errors.New("importer: loader is required")
		}
		i.loader = loader
		return nil
	}
}

// NewImporter creates a new importer.
// progress: where to write progress output (typically os.Stderr); nil discards it
func NewImporter(repo storage.LexiconRepository, manifests storage.ManifestRepository, config *Config, progress io.Writer, opts ...Option) (*Importer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	i := &Importer{
		repo:      repo,
		manifests: manifests,
		config:    config,
		progress:  progress,
		logger:    slog.Default(),
		recorder:  metrics.Noop{},
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	if i.loader == nil {
		loader, err := lexicon.NewLoader(lexicon.WithLogger(i.logger), lexicon.WithRecorder(i.recorder))
		if err != nil {
			return nil, err
		}
		i.loader = loader
	}
	return i, nil
}

// Run reads the record files and imports them.
func (i *Importer) Run(ctx context.Context, files lexicon.Files) (*core.Manifest, error) {
	records, err := lexicon.ReadFiles(files)
	if err != nil {
		return nil, fmt.Errorf("failed to read record files: %w", err)
	}
	return i.Import(ctx, records)
}

// Import checks the records by building a graph from them, writes them to
// the store in batches and saves a manifest. Nothing is written when the
// records fail to load.
func (i *Importer) Import(ctx context.Context, records *lexicon.Records) (manifest *core.Manifest, err error) {
	start := time.Now()
	defer func() {
		i.recorder.RecordImport(records.Total(), time.Since(start), err)
	}()

	if len(records.Sememes) == 0 && len(records.Senses) == 0 {
		return nil, ErrNoRecords
	}

	g, err := i.loader.LoadRecords(records)
	if err != nil {
		return nil, fmt.Errorf("records failed to load: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := i.prepareStore(ctx); err != nil {
		return nil, err
	}
	// The manifest is written last, so a store without one never holds a
	// complete import.
	if err := i.manifests.DeleteManifest(ctx); err != nil {
		return nil, fmt.Errorf("failed to remove manifest: %w", err)
	}

	fmt.Fprintf(i.progress, "Importing %d records (batch size: %d)\n", records.Total(), i.config.BatchSize)

	progress := NewProgress(i.progress, 3, i.config.ReportInterval)
	if err := writeStage(ctx, i, progress, "sememes", records.Sememes, i.repo.AddSememes); err != nil {
		return nil, err
	}
	if err := writeStage(ctx, i, progress, "senses", records.Senses, i.repo.AddSenses); err != nil {
		return nil, err
	}
	if err := writeStage(ctx, i, progress, "relations", records.Relations, i.repo.AddRelations); err != nil {
		return nil, err
	}

	manifest = &core.Manifest{
		Sememes:     len(records.Sememes),
		Senses:      len(records.Senses),
		Relations:   len(records.Relations),
		Fingerprint: g.Fingerprint(),
	}
	err = RetryWithBackoff(ctx, i.logger, func(ctx context.Context) error {
		return i.manifests.SaveManifest(ctx, manifest)
	}, i.config.MaxRetries, i.config.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to save manifest: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(i.progress, "Import complete. Stored %d records in %v\n", records.Total(), elapsed.Round(time.Millisecond))
	i.logger.Info("Lexicon imported",
		"sememes", manifest.Sememes,
		"senses", manifest.Senses,
		"relations", manifest.Relations,
		"fingerprint", fmt.Sprintf("%016x", uint64(manifest.Fingerprint)),
		"duration", elapsed)
	return manifest, nil
}

// prepareStore refuses or clears a store that already holds records.
func (i *Importer) prepareStore(ctx context.Context) error {
	sememes, senses, relations, err := i.repo.Counts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count stored records: %w", err)
	}
	if sememes+senses+relations == 0 {
		return nil
	}
	if !i.config.Replace {
		return fmt.Errorf("%w: holds %d sememes, %d senses and %d relations", ErrStoreNotEmpty, sememes, senses, relations)
	}
	i.logger.Warn("Replacing stored lexicon", "sememes", sememes, "senses", senses, "relations", relations)
	return i.repo.Clear(ctx)
}

func writeStage[T any](ctx context.Context, i *Importer, progress *Progress, label string, records []*T, write func(context.Context, ...*T) error) error {
	progress.BeginStage(label, len(records))
	w := NewBatchWriter(write, i.config.BatchSize, i.config.MaxRetries, i.config.RetryDelay, i.logger)
	if err := w.Write(ctx, records, progress.Add); err != nil {
		progress.EndStage()
		return fmt.Errorf("failed to import %s: %w", label, err)
	}
	elapsed := progress.EndStage()

	i.logger.Debug("Import stage complete", "stage", label, "records", len(records), "duration", elapsed)
	return nil
}
