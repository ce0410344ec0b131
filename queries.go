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

package hownet

import (
	"context"
	"iter"

	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/similarity"
	"github.com/poiesic/hownet/tree"
)

// SenseSememes pairs a sense with the sememes of its tree.
type SenseSememes struct {
	// Sense is nil for the merged entry.
	Sense   *core.Sense
	Sememes []core.SememeID
}

func checkPOS(pos *core.POS) error {
	if pos != nil && !pos.Valid() {
		return core.NewInvalidQuery("pos", *pos, "unknown part of speech")
	}
	return nil
}

func checkLang(lang core.Lang) error {
	if !lang.Valid() {
		return core.NewInvalidQuery("lang", lang, "unknown language")
	}
	return nil
}

// LookupSenses returns the senses of word in insertion order, optionally
// restricted to one part of speech.
func (d *Dictionary) LookupSenses(word string, pos *core.POS, lang core.Lang) ([]*core.Sense, error) {
	if err := checkPOS(pos); err != nil {
		return nil, err
	}
	if err := checkLang(lang); err != nil {
		return nil, err
	}
	return d.graph.Senses(word, pos, lang), nil
}

// Sense returns the sense with the given identifier.
func (d *Dictionary) Sense(id core.SenseID) (*core.Sense, bool) {
	return d.graph.Sense(id)
}

// Sememe returns the sememe with the given identifier.
func (d *Dictionary) Sememe(id core.SememeID) (*core.Sememe, bool) {
	return d.graph.Sememe(id)
}

// RelationsOf lists the outgoing edges of the sememe or, failing that, the
// sense with identifier id. A nil rel lists every relation type.
func (d *Dictionary) RelationsOf(id string, rel *core.RelationType) ([]core.Relation, error) {
	return d.RelationsOfDirection(id, rel, core.DirectionOut)
}

// RelationsOfDirection is RelationsOf following dir. Incoming entries name
// the entity the edge comes from.
func (d *Dictionary) RelationsOfDirection(id string, rel *core.RelationType, dir core.Direction) ([]core.Relation, error) {
	if rel != nil && !rel.Valid() {
		return nil, core.NewInvalidQuery("relation", *rel, "unknown relation type")
	}
	if !dir.Valid() {
		return nil, core.NewInvalidQuery("direction", dir, "must be out, in or both")
	}
	if _, ok := d.graph.Sememe(core.SememeID(id)); ok {
		return d.graph.Relations(core.EntitySememe, id, rel, dir), nil
	}
	return d.graph.Relations(core.EntitySense, id, rel, dir), nil
}

// SensesBySememe returns the senses whose expression references the sememe.
func (d *Dictionary) SensesBySememe(id core.SememeID) []*core.Sense {
	return d.graph.SensesBySememe(id)
}

// SensesBySememeMatch returns the senses referencing any sememe that
// SearchSememes(query) finds, without duplicates.
func (d *Dictionary) SensesBySememeMatch(query string) []*core.Sense {
	return d.graph.SensesBySememeMatch(query)
}

// SensesBySynset returns the senses carrying an external synset identifier.
func (d *Dictionary) SensesBySynset(synset string) []*core.Sense {
	return d.graph.SensesBySynset(synset)
}

// SenseSynonyms returns the senses annotated with exactly the sememes of the
// sense id, that sense included.
func (d *Dictionary) SenseSynonyms(id core.SenseID) []*core.Sense {
	return d.graph.SenseSynonyms(id)
}

// SememeRelation returns the relation types linking sememe x to sememe y.
func (d *Dictionary) SememeRelation(x, y core.SememeID) []core.RelationType {
	return d.graph.SememeRelations(x, y)
}

// SememeRelationDirection lists the edges between sememes x and y seen from
// x: outgoing ones run from x to y, incoming ones from y to x.
func (d *Dictionary) SememeRelationDirection(x, y core.SememeID, dir core.Direction) ([]core.Relation, error) {
	if !dir.Valid() {
		return nil, core.NewInvalidQuery("direction", dir, "must be out, in or both")
	}
	return d.graph.SememeRelationsDirected(x, y, dir), nil
}

// Sememes yields every sememe in load order.
func (d *Dictionary) Sememes() iter.Seq[*core.Sememe] {
	return d.graph.AllSememes()
}

// SearchSememes returns the sememes whose identifier or glosses contain query.
func (d *Dictionary) SearchSememes(query string) []*core.Sememe {
	return d.graph.SearchSememes(query)
}

// Has reports whether word has a sense in lang.
func (d *Dictionary) Has(word string, lang core.Lang) (bool, error) {
	if err := checkLang(lang); err != nil {
		return false, err
	}
	return d.graph.Has(word, lang), nil
}

// Words lists the vocabulary of lang in ascending order.
func (d *Dictionary) Words(lang core.Lang) ([]string, error) {
	if err := checkLang(lang); err != nil {
		return nil, err
	}
	return d.graph.Words(lang), nil
}

// WordsWithPrefix lists the words of lang starting with prefix, in
// ascending order.
func (d *Dictionary) WordsWithPrefix(prefix string, lang core.Lang) ([]string, error) {
	if err := checkLang(lang); err != nil {
		return nil, err
	}
	return d.graph.WordsWithPrefix(prefix, lang), nil
}

// BuildSememeTree builds the sememe tree of a sense. A nil tree and nil
// error mean no sense has the identifier.
func (d *Dictionary) BuildSememeTree(id core.SenseID, maxDepth int, matching config.MatchMode) (*tree.Tree, error) {
	if maxDepth < 0 {
		return nil, core.NewInvalidQuery("maxDepth", maxDepth, "must be non-negative")
	}
	if _, err := config.ParseMatchMode(string(matching)); err != nil {
		return nil, core.NewInvalidQuery("matching", matching, "must be strict or fuzzy")
	}
	sense, ok := d.graph.Sense(id)
	if !ok {
		return nil, nil
	}
	return d.trees.Build(sense, maxDepth, matching)
}

// SememesByWord returns, for each sense of word, the distinct sememes of
// its tree within layers levels of the root; a negative layers value takes
// every level. Trees use the configured depth and matching mode. With
// merge set, the result is a single entry holding the union in first-seen
// order.
func (d *Dictionary) SememesByWord(word string, lang core.Lang, layers int, merge bool) ([]SenseSememes, error) {
	senses, err := d.LookupSenses(word, nil, lang)
	if err != nil {
		return nil, err
	}

	out := make([]SenseSememes, 0, len(senses))
	for _, s := range senses {
		t, err := d.trees.Build(s, d.cfg.MaxDepth, d.cfg.Matching)
		if err != nil {
			return nil, err
		}
		out = append(out, SenseSememes{Sense: s, Sememes: t.Sememes(layers)})
	}
	if !merge || len(out) == 0 {
		return out, nil
	}

	var union []core.SememeID
	seen := make(map[core.SememeID]struct{})
	for _, entry := range out {
		for _, id := range entry.Sememes {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				union = append(union, id)
			}
		}
	}
	return []SenseSememes{{Sememes: union}}, nil
}

// Similarity returns the similarity of two words in [0, 1]: the best score
// over their sense pairs, or 0 when either word has no sense.
func (d *Dictionary) Similarity(w1, w2 string, pos *core.POS, lang core.Lang) (float64, error) {
	if err := checkPOS(pos); err != nil {
		return 0, err
	}
	if err := checkLang(lang); err != nil {
		return 0, err
	}
	return d.engine.Similarity(w1, w2, pos, lang), nil
}

// SenseSimilarity returns the similarity of two senses in [0, 1].
func (d *Dictionary) SenseSimilarity(a, b *core.Sense) float64 {
	return d.engine.SenseSimilarity(a, b)
}

// NearestWords returns up to opts.K words most similar to word, by
// descending score and then ascending word.
func (d *Dictionary) NearestWords(ctx context.Context, word string, opts similarity.NearestOptions) ([]similarity.Neighbor, error) {
	return d.engine.Nearest(ctx, word, opts)
}

// NearestWordsWithMonitor is NearestWords reporting progress to monitor.
func (d *Dictionary) NearestWordsWithMonitor(ctx context.Context, word string, opts similarity.NearestOptions, monitor similarity.Monitor) ([]similarity.Neighbor, error) {
	return d.engine.NearestWithMonitor(ctx, word, opts, monitor)
}
