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

package lexicon

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
	"github.com/poiesic/hownet/metrics"
)

// Loader validates raw records and builds a graph.Graph from them.
// A Loader holds no per-load state and may be reused.
type Loader struct {
	strict   bool
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Loader.
type Option func(*Loader) error

// WithStrictReferences makes the first unresolved reference fail the load.
// Default is lenient.
func WithStrictReferences(strict bool) Option {
	return func(l *Loader) error {
		l.strict = strict
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// WithRecorder sets the metrics recorder.
// Default is metrics.Noop.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(l *Loader) error {
		l.recorder = metrics.OrNoop(recorder)
		return nil
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) (*Loader, error) {
	l := &Loader{
		logger:   slog.Default(),
		recorder: metrics.Noop{},
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Load builds a graph from in-memory records.
func (l *Loader) Load(sememes []*core.SememeRecord, senses []*core.SenseRecord, relations []*core.RelationRecord) (*graph.Graph, error) {
	return l.LoadSeq(sliceSeq(sememes), sliceSeq(senses), sliceSeq(relations))
}

// LoadSeq builds a graph from record streams. A nil stream is treated as
// empty. The first error yielded by a stream aborts the load.
func (l *Loader) LoadSeq(
	sememes iter.Seq2[*core.SememeRecord, error],
	senses iter.Seq2[*core.SenseRecord, error],
	relations iter.Seq2[*core.RelationRecord, error],
) (g *graph.Graph, err error) {
	start := time.Now()
	defer func() {
		var stats core.Stats
		if g != nil {
			stats = g.Stats()
		}
		l.recorder.RecordLoad(stats, time.Since(start), err)
	}()

	b := graph.NewBuilder()
	if err := l.loadSememes(b, sememes); err != nil {
		return nil, err
	}
	if err := l.loadSenses(b, senses); err != nil {
		return nil, err
	}
	if err := l.loadRelations(b, relations); err != nil {
		return nil, err
	}

	g = b.Build()
	stats := g.Stats()
	l.logger.Info("Lexicon loaded",
		"sememes", stats.Sememes,
		"senses", stats.Senses,
		"sememe_edges", stats.SememeEdges,
		"sense_edges", stats.SenseEdges,
		"skipped_references", stats.SkippedReferences,
		"duration", time.Since(start))
	return g, nil
}

func (l *Loader) loadSememes(b *graph.Builder, records iter.Seq2[*core.SememeRecord, error]) error {
	if records == nil {
		return nil
	}
	for record, err := range records {
		if err != nil {
			return fmt.Errorf("read sememes: %w", err)
		}
		s, err := sememeFromRecord(record)
		if err != nil {
			return err
		}
		if err := b.AddSememe(s); err != nil {
			if errors.Is(err, graph.ErrDuplicateID) {
				return &core.ParseError{Record: "sememe", ID: string(s.ID), Field: "sememe_id", Offset: -1, Reason: "duplicate identifier"}
			}
			return err
		}
	}
	return nil
}

func (l *Loader) loadSenses(b *graph.Builder, records iter.Seq2[*core.SenseRecord, error]) error {
	if records == nil {
		return nil
	}
	for record, err := range records {
		if err != nil {
			return fmt.Errorf("read senses: %w", err)
		}
		if err := core.ValidateSenseRecord(record); err != nil {
			return err
		}
		id := strings.TrimSpace(record.SenseID)
		pos, _ := core.ParsePOS(record.POS)

		expr, err := ParseExpression(record.SememeExpression)
		if err != nil {
			var pe *core.ParseError
			if errors.As(err, &pe) {
				pe.Record = "sense"
				pe.ID = id
			}
			return err
		}
		if err := l.resolveExpression(b, id, expr); err != nil {
			return err
		}

		sense := &core.Sense{
			ID:            core.SenseID(id),
			WordEn:        strings.TrimSpace(record.WordEn),
			WordZh:        strings.TrimSpace(record.WordZh),
			POS:           pos,
			Expression:    expr,
			RawExpression: record.SememeExpression,
			SynsetID:      strings.TrimSpace(record.ExternalSynsetID),
		}
		if err := b.AddSense(sense); err != nil {
			if errors.Is(err, graph.ErrDuplicateID) {
				return &core.ParseError{Record: "sense", ID: id, Field: "sense_id", Offset: -1, Reason: "duplicate identifier"}
			}
			return err
		}
	}
	return nil
}

// resolveExpression checks every sememe head against the builder.
func (l *Loader) resolveExpression(b *graph.Builder, senseID string, expr *core.ExprNode) error {
	var missing error
	expr.Walk(func(node *core.ExprNode, _ int) bool {
		if missing != nil {
			return false
		}
		if node.Kind != core.NodeSememe || b.HasSememe(node.Sememe) {
			return true
		}
		ref := &core.MissingReferenceError{
			Kind:     core.EntitySememe,
			From:     senseID,
			To:       string(node.Sememe),
			Relation: "expression",
			Missing:  string(node.Sememe),
		}
		if l.strict {
			missing = ref
			return false
		}
		node.Kind = core.NodeUnresolved
		l.skip(b, ref)
		return true
	})
	return missing
}

func (l *Loader) loadRelations(b *graph.Builder, records iter.Seq2[*core.RelationRecord, error]) error {
	if records == nil {
		return nil
	}
	for record, err := range records {
		if err != nil {
			return fmt.Errorf("read relations: %w", err)
		}
		if err := core.ValidateRelationRecord(record); err != nil {
			return err
		}
		rel, _ := core.ParseRelationType(record.RelationType)
		kind, _ := core.ParseEntityKind(record.EntityKind)
		src := strings.TrimSpace(record.SrcID)
		dst := strings.TrimSpace(record.DstID)

		err = b.AddRelation(kind, src, rel, dst)
		var missing *core.MissingReferenceError
		switch {
		case err == nil:
		case errors.As(err, &missing) && !l.strict:
			l.skip(b, missing)
		default:
			return err
		}
	}
	return nil
}

func (l *Loader) skip(b *graph.Builder, ref *core.MissingReferenceError) {
	b.SkipReference()
	l.recorder.RecordSkippedReference(ref.Kind)
	l.logger.Warn("Skipping unresolved reference",
		"kind", ref.Kind.String(),
		"from", ref.From,
		"to", ref.To,
		"relation", ref.Relation,
		"missing", ref.Missing)
}

// sememeFromRecord validates a sememe record and fills in glosses that the
// record leaves blank from the "english|chinese" identifier.
func sememeFromRecord(record *core.SememeRecord) (*core.Sememe, error) {
	if err := core.ValidateSememeRecord(record); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(record.SememeID)

	freq := 0
	if f := strings.TrimSpace(record.Frequency); f != "" {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, &core.ParseError{
				Record: "sememe",
				ID:     id,
				Field:  "frequency",
				Value:  record.Frequency,
				Offset: -1,
				Reason: "frequency must be a non-negative integer",
			}
		}
		freq = n
	}

	en, zh := strings.TrimSpace(record.EnGloss), strings.TrimSpace(record.ZhGloss)
	if idEn, idZh, ok := strings.Cut(id, "|"); ok {
		if en == "" {
			en = idEn
		}
		if zh == "" {
			zh = idZh
		}
	}
	return &core.Sememe{ID: core.SememeID(id), En: en, Zh: zh, Frequency: freq}, nil
}

func sliceSeq[T any](records []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}
