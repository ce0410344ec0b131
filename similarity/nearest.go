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

package similarity

import (
	"cmp"
	"container/heap"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
)

// tasksPerWorker controls how finely the candidate list is split.
const tasksPerWorker = 4

// NearestOptions controls a nearest-word search.
type NearestOptions struct {
	// K is the number of neighbours to return. Must be non-negative.
	K int
	// POS restricts both the query senses and the candidate senses.
	POS *core.POS
	// Lang selects the query word forms and the candidate vocabulary.
	Lang core.Lang
	// Candidates replaces the vocabulary as the candidate list when non-nil.
	Candidates []string
	// IncludeQuery keeps the query word among the candidates.
	IncludeQuery bool
}

// Neighbor is one scored candidate word.
type Neighbor struct {
	Word  string
	Score float64
}

// Nearest returns the K words most similar to word, ordered by descending
// score and then ascending word. An absent query word or K == 0 gives an
// empty result.
func (e *Engine) Nearest(ctx context.Context, word string, opts NearestOptions) ([]Neighbor, error) {
	return e.NearestWithMonitor(ctx, word, opts, nil)
}

// NearestWithMonitor is Nearest with a monitor receiving progress callbacks.
func (e *Engine) NearestWithMonitor(ctx context.Context, word string, opts NearestOptions, monitor Monitor) (results []Neighbor, err error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if opts.K < 0 {
		return nil, core.NewInvalidQuery("k", opts.K, "must be non-negative")
	}
	if !opts.Lang.Valid() {
		return nil, core.NewInvalidQuery("lang", opts.Lang, "unknown language")
	}
	if opts.POS != nil && !opts.POS.Valid() {
		return nil, core.NewInvalidQuery("pos", *opts.POS, "unknown part of speech")
	}
	if e.released.Load() {
		return nil, ErrEngineReleased
	}

	start := time.Now()
	candidates := 0
	monitor.Start(word, opts)
	defer func() {
		e.recorder.RecordNearest(candidates, time.Since(start), err)
		monitor.Finish(results, err)
	}()

	query := e.graph.Senses(word, opts.POS, opts.Lang)
	monitor.QuerySenses(query)
	if len(query) == 0 || opts.K == 0 {
		return []Neighbor{}, nil
	}

	words := e.candidateWords(word, opts)
	candidates = len(words)
	monitor.Candidates(candidates)
	if len(words) == 0 {
		return []Neighbor{}, nil
	}

	scorer := e.newQueryScorer(query)
	chunks := chunk(words, e.cfg.PoolSize*tasksPerWorker)
	partial := make([][]Neighbor, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			partial[i], errs[i] = e.scoreChunk(ctx, scorer, c, opts, monitor)
		}
		if err := e.pool.Submit(task); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var merged []Neighbor
	for _, p := range partial {
		merged = append(merged, p...)
	}
	slices.SortFunc(merged, compareNeighbors)
	if len(merged) > opts.K {
		merged = merged[:opts.K]
	}

	e.logger.Debug("Nearest words computed",
		"word", word,
		"candidates", candidates,
		"results", len(merged),
		"duration", time.Since(start))
	return merged, nil
}

// candidateWords returns the distinct candidate words that have at least one
// sense under the filters, in a stable order.
func (e *Engine) candidateWords(query string, opts NearestOptions) []string {
	source := opts.Candidates
	if source == nil {
		source = e.graph.Words(opts.Lang)
	}
	seen := make(map[string]struct{}, len(source))
	out := make([]string, 0, len(source))
	for _, w := range source {
		if w == query && !opts.IncludeQuery {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if len(e.graph.Senses(w, opts.POS, opts.Lang)) > 0 {
			out = append(out, w)
		}
	}
	return out
}

func (e *Engine) scoreChunk(ctx context.Context, q *queryScorer, words []string, opts NearestOptions, monitor Monitor) ([]Neighbor, error) {
	h := &neighborHeap{}
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		best := 0.0
		for _, s := range e.graph.Senses(w, opts.POS, opts.Lang) {
			if score := q.score(s); score > best {
				best = score
			}
		}
		monitor.Scored(w, best)

		n := Neighbor{Word: w, Score: best}
		if h.Len() < opts.K {
			heap.Push(h, n)
		} else if compareNeighbors(n, (*h)[0]) < 0 {
			(*h)[0] = n
			heap.Fix(h, 0)
		}
	}
	return *h, nil
}

// queryScorer scores candidate senses against a fixed set of query senses,
// reusing one distance table per query role sememe.
type queryScorer struct {
	e      *Engine
	roles  []roleSet
	tables map[graph.Ordinal]map[graph.Ordinal]int
}

func (e *Engine) newQueryScorer(query []*core.Sense) *queryScorer {
	q := &queryScorer{e: e, tables: make(map[graph.Ordinal]map[graph.Ordinal]int)}
	for _, s := range query {
		r := extractRoles(e.graph, s)
		for i, ok := range r.ok {
			if !ok {
				continue
			}
			if _, done := q.tables[r.ords[i]]; !done {
				// two searches of MaxDepth hops each reach 2*MaxDepth
				q.tables[r.ords[i]] = distanceTable(e.graph, r.ords[i], 2*e.cfg.MaxDepth)
			}
		}
		q.roles = append(q.roles, r)
	}
	return q
}

func (q *queryScorer) score(candidate *core.Sense) float64 {
	start := time.Now()
	defer func() { q.e.recorder.RecordSimilarity(time.Since(start)) }()

	rc := extractRoles(q.e.graph, candidate)
	best := 0.0
	for i := range q.roles {
		rq := &q.roles[i]
		s := q.e.combine(rq, &rc, func(role int) float64 {
			d, ok := q.tables[rq.ords[role]][rc.ords[role]]
			if !ok {
				return 0
			}
			return q.e.fromDistance(d)
		})
		if s > best {
			best = s
		}
	}
	return best
}

// compareNeighbors orders by descending score, then ascending word.
func compareNeighbors(a, b Neighbor) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.Word, b.Word)
}

// neighborHeap keeps the worst retained neighbour at the top.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return compareNeighbors(h[i], h[j]) > 0 }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *neighborHeap) Push(x any) {
	*h = append(*h, x.(Neighbor))
}

func (h *neighborHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

func chunk(words []string, parts int) [][]string {
	if parts < 1 {
		parts = 1
	}
	size := (len(words) + parts - 1) / parts
	if size < 1 {
		size = 1
	}
	var out [][]string
	for start := 0; start < len(words); start += size {
		out = append(out, words[start:min(start+size, len(words))])
	}
	return out
}
