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

package tree

import (
	"fmt"
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
)

// Builder builds sememe trees over one graph. It is safe for concurrent use.
type Builder struct {
	graph    *graph.Graph
	relation core.RelationType
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithRelation sets the relation followed by expansion.
// Default is core.RelationHypernym.
func WithRelation(rel core.RelationType) Option {
	return func(b *Builder) error {
		if !rel.Valid() {
			return core.NewInvalidQuery("relation", rel, "unknown relation type")
		}
		b.relation = rel
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a Builder over g.
func NewBuilder(g *graph.Graph, opts ...Option) (*Builder, error) {
	if g == nil {
		return nil, ErrGraphRequired
	}
	b := &Builder{
		graph:    g,
		relation: core.RelationHypernym,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Relation returns the relation followed by expansion.
func (b *Builder) Relation() core.RelationType {
	return b.relation
}

// Build builds the tree of sense. maxDepth bounds the number of expansion
// hops taken from each bound expression sememe; 0 keeps the expression
// only. The result is deterministic for a fixed graph, depth and mode.
func (b *Builder) Build(sense *core.Sense, maxDepth int, mode config.MatchMode) (*Tree, error) {
	if sense == nil {
		return nil, ErrSenseRequired
	}
	if maxDepth < 0 {
		return nil, core.NewInvalidQuery("maxDepth", maxDepth, "must be non-negative")
	}
	if _, err := config.ParseMatchMode(string(mode)); err != nil {
		return nil, core.NewInvalidQuery("matching", mode, "must be strict or fuzzy")
	}

	s := &buildState{
		b:        b,
		maxDepth: maxDepth,
		mode:     mode,
		memo:     make(map[memoKey][]*memoEntry),
		refs:     make(map[*Node]int),
		onPath:   make(map[graph.Ordinal]struct{}),
	}
	root := &Node{Role: core.RoleSense, Kind: core.NodeRoot, Text: sense.Word(core.LangAll)}
	if sense.Expression != nil {
		for _, def := range mergeSiblings(sense.Expression.Children, mode) {
			root.Children = append(root.Children, s.expression(def))
		}
	}
	s.refs[root] = 1

	t := &Tree{Sense: sense, Root: root, refs: s.refs}
	b.logger.Debug("Built sememe tree",
		"sense", string(sense.ID),
		"nodes", t.Size(),
		"max_depth", maxDepth,
		"matching", string(mode))
	return t, nil
}

// String describes the builder configuration.
func (b *Builder) String() string {
	return fmt.Sprintf("tree.Builder{relation: %s}", b.relation)
}

type memoKey struct {
	ord       graph.Ordinal
	remaining int
}

// memoEntry is an expansion subtree together with the path decisions it was
// built under: the sememes it holds and the sememes it left out because
// they were on the path at the time.
type memoEntry struct {
	node     *Node
	contains *roaring.Bitmap
	skipped  *roaring.Bitmap
}

// merge adds the decisions of a child subtree to e.
func (e *memoEntry) merge(child *memoEntry) {
	e.contains.Or(child.contains)
	e.skipped.Or(child.skipped)
}

type buildState struct {
	b        *Builder
	maxDepth int
	mode     config.MatchMode
	memo     map[memoKey][]*memoEntry
	refs     map[*Node]int
	onPath   map[graph.Ordinal]struct{}
}

// expression converts an expression node and its subtree, expanding every
// bound sememe along the way.
func (s *buildState) expression(e *core.ExprNode) *Node {
	n := &Node{Role: e.Role, Kind: e.Kind, Sememe: e.Sememe, Text: e.Text}
	s.refs[n] = 1

	ord, bound := graph.Ordinal(0), false
	if e.Bound() {
		ord, bound = s.b.graph.SememeOrdinal(e.Sememe)
	}
	pushed := false
	if _, ok := s.onPath[ord]; bound && !ok {
		s.onPath[ord] = struct{}{}
		pushed = true
	}
	for _, child := range e.Children {
		n.Children = append(n.Children, s.expression(child))
	}
	if bound {
		n.Children = append(n.Children, s.expand(ord, s.maxDepth, newMemoEntry(nil))...)
	}
	if pushed {
		delete(s.onPath, ord)
	}
	return n
}

// expand returns the expansion nodes of ord with remaining hops left and
// records the decisions taken into parent.
func (s *buildState) expand(ord graph.Ordinal, remaining int, parent *memoEntry) []*Node {
	if remaining <= 0 {
		return nil
	}
	var out []*Node
	for _, next := range s.b.graph.Expand(ord, s.b.relation) {
		if _, ok := s.onPath[next]; ok {
			parent.skipped.Add(uint32(next))
			continue
		}
		key := memoKey{ord: next, remaining: remaining - 1}
		if e := s.reusable(key); e != nil {
			s.refs[e.node]++
			parent.merge(e)
			out = append(out, e.node)
			continue
		}

		n := &Node{Kind: core.NodeSememe, Sememe: s.b.graph.SememeAt(next).ID, Expanded: true}
		e := newMemoEntry(n)
		e.contains.Add(uint32(next))
		s.refs[n] = 1
		s.onPath[next] = struct{}{}
		n.Children = s.expand(next, remaining-1, e)
		delete(s.onPath, next)
		s.memo[key] = append(s.memo[key], e)
		parent.merge(e)
		out = append(out, n)
	}
	return out
}

// reusable returns a memoized subtree that a fresh expansion under the
// current path would reproduce exactly, or nil. That holds when none of its
// sememes is on the path and every sememe it left out still is.
func (s *buildState) reusable(key memoKey) *memoEntry {
	for _, e := range s.memo[key] {
		if s.matchesPath(e) {
			return e
		}
	}
	return nil
}

func (s *buildState) matchesPath(e *memoEntry) bool {
	for ord := range s.onPath {
		if e.contains.Contains(uint32(ord)) {
			return false
		}
	}
	it := e.skipped.Iterator()
	for it.HasNext() {
		ord := it.Next()
		if _, ok := s.onPath[graph.Ordinal(ord)]; ok {
			continue
		}
		if !e.contains.Contains(ord) {
			return false
		}
	}
	return true
}

func newMemoEntry(n *Node) *memoEntry {
	return &memoEntry{node: n, contains: roaring.New(), skipped: roaring.New()}
}
