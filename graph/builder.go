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

package graph

import (
	"encoding/binary"
	"fmt"
	"hash"
	"slices"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/hownet/core"
	"github.com/tidwall/btree"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// Builder accumulates entities and edges for a Graph. It is not safe for
// concurrent use and must not be used after Build.
type Builder struct {
	g      *Graph
	digest hash.Hash

	// synonymKeys maps a sememe set digest to its group in g.synonyms.
	synonymKeys map[core.ID]int32
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	digest, _ := blake2b.New(8, nil)
	less := func(a, b string) bool { return a < b }
	return &Builder{
		g: &Graph{
			sememeIdx: make(map[core.SememeID]Ordinal),
			senseIdx:  make(map[core.SenseID]Ordinal),
			enWords:   make(map[string][]Ordinal),
			zhWords:   make(map[string][]Ordinal),
			enVocab:   btree.NewBTreeG[string](less),
			zhVocab:   btree.NewBTreeG[string](less),
			bySynset:  make(map[string]*roaring.Bitmap),
		},
		digest:      digest,
		synonymKeys: make(map[core.ID]int32),
	}
}

// HasSememe reports whether a sememe with id was added.
func (b *Builder) HasSememe(id core.SememeID) bool {
	_, ok := b.g.sememeIdx[id]
	return ok
}

// HasSense reports whether a sense with id was added.
func (b *Builder) HasSense(id core.SenseID) bool {
	_, ok := b.g.senseIdx[id]
	return ok
}

// AddSememe appends a sememe to the arena.
// Returns ErrDuplicateID if the identifier is already present.
func (b *Builder) AddSememe(s *core.Sememe) error {
	if b.HasSememe(s.ID) {
		return fmt.Errorf("%w: sememe %q", ErrDuplicateID, s.ID)
	}
	ord := Ordinal(len(b.g.sememes))
	b.g.sememes = append(b.g.sememes, s)
	b.g.sememeIdx[s.ID] = ord
	b.g.sememeOut = append(b.g.sememeOut, nil)
	b.g.sememeIn = append(b.g.sememeIn, nil)
	b.g.bySememe = append(b.g.bySememe, nil)

	b.write("M", string(s.ID), s.En, s.Zh, strconv.Itoa(s.Frequency))
	return nil
}

// AddSense appends a sense to the arena, indexes its word forms and records
// the sememes its expression references. Sememe references must already be
// resolved by the caller; unresolved nodes are not indexed.
// Returns ErrDuplicateID if the identifier is already present.
func (b *Builder) AddSense(s *core.Sense) error {
	if b.HasSense(s.ID) {
		return fmt.Errorf("%w: sense %q", ErrDuplicateID, s.ID)
	}
	ord := Ordinal(len(b.g.senses))
	b.g.senses = append(b.g.senses, s)
	b.g.senseIdx[s.ID] = ord
	b.g.senseOut = append(b.g.senseOut, nil)
	b.g.senseIn = append(b.g.senseIn, nil)

	if s.WordEn != "" {
		b.g.enWords[s.WordEn] = append(b.g.enWords[s.WordEn], ord)
		b.g.enVocab.Set(s.WordEn)
	}
	if s.WordZh != "" {
		b.g.zhWords[s.WordZh] = append(b.g.zhWords[s.WordZh], ord)
		b.g.zhVocab.Set(s.WordZh)
	}

	if s.SynsetID != "" {
		addToBitmap(b.g.bySynset, s.SynsetID, ord)
	}

	expr := ""
	var resolved []string
	if s.Expression != nil {
		expr = s.Expression.Canonical()
		for _, id := range s.Expression.SememeIDs() {
			sord, ok := b.g.sememeIdx[id]
			if !ok {
				continue
			}
			if b.g.bySememe[sord] == nil {
				b.g.bySememe[sord] = roaring.New()
			}
			b.g.bySememe[sord].Add(uint32(ord))
			resolved = append(resolved, string(id))
		}
	}
	b.addSynonym(ord, resolved)

	b.write("W", string(s.ID), s.WordEn, s.WordZh, s.POS.String(), expr, s.SynsetID)
	return nil
}

// AddRelation adds a typed edge between two entities of the same kind.
// Returns a *core.MissingReferenceError when either endpoint is unknown.
func (b *Builder) AddRelation(kind core.EntityKind, src string, rel core.RelationType, dst string) error {
	if !rel.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRelation, rel)
	}

	switch kind {
	case core.EntitySememe:
		from, ok := b.g.sememeIdx[core.SememeID(src)]
		if !ok {
			return &core.MissingReferenceError{Kind: kind, From: src, To: dst, Relation: rel.String(), Missing: src}
		}
		to, ok := b.g.sememeIdx[core.SememeID(dst)]
		if !ok {
			return &core.MissingReferenceError{Kind: kind, From: src, To: dst, Relation: rel.String(), Missing: dst}
		}
		b.g.sememeOut[from] = append(b.g.sememeOut[from], edge{rel: rel, to: to})
		b.g.sememeIn[to] = append(b.g.sememeIn[to], edge{rel: rel, to: from})
		b.g.sememeEdges++
	case core.EntitySense:
		from, ok := b.g.senseIdx[core.SenseID(src)]
		if !ok {
			return &core.MissingReferenceError{Kind: kind, From: src, To: dst, Relation: rel.String(), Missing: src}
		}
		to, ok := b.g.senseIdx[core.SenseID(dst)]
		if !ok {
			return &core.MissingReferenceError{Kind: kind, From: src, To: dst, Relation: rel.String(), Missing: dst}
		}
		b.g.senseOut[from] = append(b.g.senseOut[from], edge{rel: rel, to: to})
		b.g.senseIn[to] = append(b.g.senseIn[to], edge{rel: rel, to: from})
		b.g.senseEdges++
	default:
		return fmt.Errorf("unknown entity kind %s", kind)
	}

	b.write("R", kind.String(), src, rel.String(), dst)
	return nil
}

// SkipReference records one reference dropped under the lenient policy.
func (b *Builder) SkipReference() {
	b.g.skipped++
}

// Build finalises the Graph. The Builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	g := b.g
	g.hierarchy = make([][]Ordinal, len(g.sememes))
	for ord := range g.sememes {
		var neighbors []Ordinal
		seen := make(map[Ordinal]struct{})
		for _, edges := range [][]edge{g.sememeOut[ord], g.sememeIn[ord]} {
			for _, e := range edges {
				if !e.rel.IsHierarchy() || e.to == Ordinal(ord) {
					continue
				}
				if _, ok := seen[e.to]; ok {
					continue
				}
				seen[e.to] = struct{}{}
				neighbors = append(neighbors, e.to)
			}
		}
		g.hierarchy[ord] = neighbors
	}
	for _, bm := range g.bySememe {
		if bm != nil {
			bm.RunOptimize()
		}
	}
	for _, bm := range g.synonyms {
		bm.RunOptimize()
	}
	for _, bm := range g.bySynset {
		bm.RunOptimize()
	}

	g.fingerprint = core.ID(binary.LittleEndian.Uint64(b.digest.Sum(nil)))

	b.g = nil
	return g
}

// addSynonym files the sense under the group of senses annotated with the
// same sememe set. Order of the set does not matter.
func (b *Builder) addSynonym(ord Ordinal, sememes []string) {
	if len(sememes) == 0 {
		b.g.synonymGroup = append(b.g.synonymGroup, -1)
		return
	}
	slices.Sort(sememes)
	key := core.IDFromContent(strings.Join(sememes, fieldSep))
	group, ok := b.synonymKeys[key]
	if !ok {
		group = int32(len(b.g.synonyms))
		b.synonymKeys[key] = group
		b.g.synonyms = append(b.g.synonyms, roaring.New())
	}
	b.g.synonyms[group].Add(uint32(ord))
	b.g.synonymGroup = append(b.g.synonymGroup, group)
}

func addToBitmap(index map[string]*roaring.Bitmap, key string, ord Ordinal) {
	bm, ok := index[key]
	if !ok {
		bm = roaring.New()
		index[key] = bm
	}
	bm.Add(uint32(ord))
}

func (b *Builder) write(fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.digest.Write([]byte(fieldSep))
		}
		b.digest.Write([]byte(f))
	}
	b.digest.Write([]byte(recordSep))
}
