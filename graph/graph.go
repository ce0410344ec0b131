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
	"iter"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/poiesic/hownet/core"
	"github.com/tidwall/btree"
)

// Ordinal addresses an entity inside its arena.
type Ordinal int32

// edge is a typed adjacency entry.
type edge struct {
	rel core.RelationType
	to  Ordinal
}

// Graph is the immutable index over sememes, senses and their relations.
// All methods are safe for concurrent use.
type Graph struct {
	sememes   []*core.Sememe
	senses    []*core.Sense
	sememeIdx map[core.SememeID]Ordinal
	senseIdx  map[core.SenseID]Ordinal

	sememeOut [][]edge
	sememeIn  [][]edge
	senseOut  [][]edge
	senseIn   [][]edge
	hierarchy [][]Ordinal

	enWords map[string][]Ordinal
	zhWords map[string][]Ordinal
	enVocab *btree.BTreeG[string]
	zhVocab *btree.BTreeG[string]

	bySememe []*roaring.Bitmap
	bySynset map[string]*roaring.Bitmap

	// synonymGroup holds the index into synonyms of each sense, or -1 for a
	// sense without resolved sememes.
	synonymGroup []int32
	synonyms     []*roaring.Bitmap

	sememeEdges int
	senseEdges  int
	skipped     int
	fingerprint core.ID
}

// Sememe returns the sememe with the given identifier.
func (g *Graph) Sememe(id core.SememeID) (*core.Sememe, bool) {
	ord, ok := g.sememeIdx[id]
	if !ok {
		return nil, false
	}
	return g.sememes[ord], true
}

// Sense returns the sense with the given identifier.
func (g *Graph) Sense(id core.SenseID) (*core.Sense, bool) {
	ord, ok := g.senseIdx[id]
	if !ok {
		return nil, false
	}
	return g.senses[ord], true
}

// Senses returns the senses of word in insertion order. A nil pos matches
// every part of speech. LangAll returns English matches first, then Chinese
// matches that were not already returned.
func (g *Graph) Senses(word string, pos *core.POS, lang core.Lang) []*core.Sense {
	var ords []Ordinal
	switch lang {
	case core.LangEn:
		ords = g.enWords[word]
	case core.LangZh:
		ords = g.zhWords[word]
	default:
		ords = mergeOrdinals(g.enWords[word], g.zhWords[word])
	}

	out := make([]*core.Sense, 0, len(ords))
	for _, ord := range ords {
		s := g.senses[ord]
		if pos != nil && s.POS != *pos {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Has reports whether word has at least one sense in lang.
func (g *Graph) Has(word string, lang core.Lang) bool {
	switch lang {
	case core.LangEn:
		return len(g.enWords[word]) > 0
	case core.LangZh:
		return len(g.zhWords[word]) > 0
	}
	return len(g.enWords[word]) > 0 || len(g.zhWords[word]) > 0
}

// Words returns the vocabulary of lang in lexical order. LangAll merges both
// vocabularies without duplicates.
func (g *Graph) Words(lang core.Lang) []string {
	var out []string
	switch lang {
	case core.LangEn:
		out = make([]string, 0, g.enVocab.Len())
		g.enVocab.Scan(func(w string) bool {
			out = append(out, w)
			return true
		})
	case core.LangZh:
		out = make([]string, 0, g.zhVocab.Len())
		g.zhVocab.Scan(func(w string) bool {
			out = append(out, w)
			return true
		})
	default:
		merged := g.enVocab.Copy()
		g.zhVocab.Scan(func(w string) bool {
			merged.Set(w)
			return true
		})
		out = make([]string, 0, merged.Len())
		merged.Scan(func(w string) bool {
			out = append(out, w)
			return true
		})
	}
	return out
}

// WordsWithPrefix returns the words of lang starting with prefix, in lexical order.
func (g *Graph) WordsWithPrefix(prefix string, lang core.Lang) []string {
	var out []string
	collect := func(vocab *btree.BTreeG[string]) {
		vocab.Ascend(prefix, func(w string) bool {
			if !strings.HasPrefix(w, prefix) {
				return false
			}
			out = append(out, w)
			return true
		})
	}
	switch lang {
	case core.LangEn:
		collect(g.enVocab)
	case core.LangZh:
		collect(g.zhVocab)
	default:
		for _, w := range g.Words(core.LangAll) {
			if strings.HasPrefix(w, prefix) {
				out = append(out, w)
			}
		}
	}
	return out
}

// Relations returns the edges of an entity in insertion order, following
// dir. DirectionBoth lists the outgoing edges before the incoming ones. A
// nil rel returns every edge type.
func (g *Graph) Relations(kind core.EntityKind, id string, rel *core.RelationType, dir core.Direction) []core.Relation {
	var (
		out, in [][]edge
		ord     Ordinal
		ok      bool
		name    func(Ordinal) string
	)
	switch kind {
	case core.EntitySememe:
		ord, ok = g.sememeIdx[core.SememeID(id)]
		out, in = g.sememeOut, g.sememeIn
		name = func(o Ordinal) string { return string(g.sememes[o].ID) }
	case core.EntitySense:
		ord, ok = g.senseIdx[core.SenseID(id)]
		out, in = g.senseOut, g.senseIn
		name = func(o Ordinal) string { return string(g.senses[o].ID) }
	}
	if !ok {
		return nil
	}

	var result []core.Relation
	appendEdges := func(edges []edge, incoming bool) {
		for _, e := range edges {
			if rel != nil && e.rel != *rel {
				continue
			}
			result = append(result, core.Relation{Type: e.rel, Target: name(e.to), Incoming: incoming})
		}
	}
	if dir != core.DirectionIn {
		appendEdges(out[ord], false)
	}
	if dir != core.DirectionOut {
		appendEdges(in[ord], true)
	}
	return result
}

// SememeRelations returns the relation types of the edges from x to y.
func (g *Graph) SememeRelations(x, y core.SememeID) []core.RelationType {
	from, ok := g.sememeIdx[x]
	if !ok {
		return nil
	}
	to, ok := g.sememeIdx[y]
	if !ok {
		return nil
	}
	var out []core.RelationType
	for _, e := range g.sememeOut[from] {
		if e.to == to {
			out = append(out, e.rel)
		}
	}
	return out
}

// SememeRelationsDirected returns the edges between x and y seen from x.
// Outgoing entries are edges from x to y; incoming entries run from y to x.
func (g *Graph) SememeRelationsDirected(x, y core.SememeID, dir core.Direction) []core.Relation {
	var out []core.Relation
	if dir != core.DirectionIn {
		for _, rel := range g.SememeRelations(x, y) {
			out = append(out, core.Relation{Type: rel, Target: string(y)})
		}
	}
	if dir != core.DirectionOut {
		for _, rel := range g.SememeRelations(y, x) {
			out = append(out, core.Relation{Type: rel, Target: string(y), Incoming: true})
		}
	}
	return out
}

// SensesBySememe returns the senses whose expression references the sememe
// directly, in ascending insertion order.
func (g *Graph) SensesBySememe(id core.SememeID) []*core.Sense {
	ord, ok := g.sememeIdx[id]
	if !ok {
		return nil
	}
	return g.sensesOf(g.bySememe[ord])
}

// SensesBySememeMatch returns the senses whose expression references any
// sememe matched by SearchSememes(query), in ascending insertion order and
// without duplicates.
func (g *Graph) SensesBySememeMatch(query string) []*core.Sense {
	var matched []*roaring.Bitmap
	for ord := range g.searchSememes(query) {
		if bm := g.bySememe[ord]; bm != nil {
			matched = append(matched, bm)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return g.sensesOf(roaring.FastOr(matched...))
}

// SensesBySynset returns the senses carrying the external synset
// identifier, in ascending insertion order.
func (g *Graph) SensesBySynset(synset string) []*core.Sense {
	return g.sensesOf(g.bySynset[synset])
}

// SenseSynonyms returns the senses annotated with exactly the same set of
// sememes as the sense id, itself included, in ascending insertion order.
// A sense without resolved sememes has no synonyms.
func (g *Graph) SenseSynonyms(id core.SenseID) []*core.Sense {
	ord, ok := g.senseIdx[id]
	if !ok || g.synonymGroup[ord] < 0 {
		return nil
	}
	return g.sensesOf(g.synonyms[g.synonymGroup[ord]])
}

func (g *Graph) sensesOf(bm *roaring.Bitmap) []*core.Sense {
	if bm == nil {
		return nil
	}
	out := make([]*core.Sense, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, g.senses[it.Next()])
	}
	return out
}

// SearchSememes returns the sememes whose identifier or glosses contain
// query, ignoring case, in insertion order.
func (g *Graph) SearchSememes(query string) []*core.Sememe {
	var out []*core.Sememe
	for _, s := range g.searchSememes(query) {
		out = append(out, s)
	}
	return out
}

func (g *Graph) searchSememes(query string) iter.Seq2[Ordinal, *core.Sememe] {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(yield func(Ordinal, *core.Sememe) bool) {
		if q == "" {
			return
		}
		for ord, s := range g.sememes {
			if !strings.Contains(strings.ToLower(string(s.ID)), q) &&
				!strings.Contains(strings.ToLower(s.En), q) &&
				!strings.Contains(s.Zh, q) {
				continue
			}
			if !yield(Ordinal(ord), s) {
				return
			}
		}
	}
}

// AllSememes yields every sememe in insertion order.
func (g *Graph) AllSememes() iter.Seq[*core.Sememe] {
	return func(yield func(*core.Sememe) bool) {
		for _, s := range g.sememes {
			if !yield(s) {
				return
			}
		}
	}
}

// SememeOrdinal returns the arena position of a sememe.
func (g *Graph) SememeOrdinal(id core.SememeID) (Ordinal, bool) {
	ord, ok := g.sememeIdx[id]
	return ord, ok
}

// SememeAt returns the sememe at ord. It panics when ord is out of range.
func (g *Graph) SememeAt(ord Ordinal) *core.Sememe {
	return g.sememes[ord]
}

// HierarchyNeighbors returns the sememes one hypernym or hyponym edge away
// from ord, in either direction, without duplicates.
func (g *Graph) HierarchyNeighbors(ord Ordinal) []Ordinal {
	return g.hierarchy[ord]
}

// Expand returns the sememes reached from ord by one rel edge. Edges stored
// in the inverse direction count as well, so hypernym expansion works over
// data that only records hyponym edges.
func (g *Graph) Expand(ord Ordinal, rel core.RelationType) []Ordinal {
	var out []Ordinal
	seen := make(map[Ordinal]struct{})
	add := func(o Ordinal) {
		if _, ok := seen[o]; !ok {
			seen[o] = struct{}{}
			out = append(out, o)
		}
	}
	for _, e := range g.sememeOut[ord] {
		if e.rel == rel {
			add(e.to)
		}
	}
	if inv := rel.Inverse(); inv != rel {
		for _, e := range g.sememeIn[ord] {
			if e.rel == inv {
				add(e.to)
			}
		}
	}
	return out
}

// SkippedReferences returns how many unresolved references a lenient load skipped.
func (g *Graph) SkippedReferences() int {
	return g.skipped
}

// Fingerprint returns a digest of the loaded content. Identical inputs
// loaded in the same order produce identical fingerprints.
func (g *Graph) Fingerprint() core.ID {
	return g.fingerprint
}

// Stats summarises the graph.
func (g *Graph) Stats() core.Stats {
	return core.Stats{
		Sememes:           len(g.sememes),
		Senses:            len(g.senses),
		SememeEdges:       g.sememeEdges,
		SenseEdges:        g.senseEdges,
		EnglishWords:      len(g.enWords),
		ChineseWords:      len(g.zhWords),
		SkippedReferences: g.skipped,
		Fingerprint:       g.fingerprint,
	}
}

func mergeOrdinals(a, b []Ordinal) []Ordinal {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]Ordinal, 0, len(a)+len(b))
	seen := make(map[Ordinal]struct{}, len(a))
	for _, o := range a {
		seen[o] = struct{}{}
		out = append(out, o)
	}
	for _, o := range b {
		if _, ok := seen[o]; !ok {
			out = append(out, o)
		}
	}
	return out
}
