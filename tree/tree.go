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
	"strings"

	"github.com/poiesic/hownet/core"
)

// Node is one node of a sememe tree.
type Node struct {
	Role core.Role
	Kind core.NodeKind
	// Sememe is set for sememe and unresolved nodes.
	Sememe core.SememeID
	// Text holds the placeholder marker, the literal text, or the word for the root.
	Text string
	// Expanded marks nodes reached through the expansion relation rather
	// than written in the expression.
	Expanded bool
	Children []*Node
}

// Label returns the sememe identifier, or the text for other node kinds.
func (n *Node) Label() string {
	switch n.Kind {
	case core.NodeSememe, core.NodeUnresolved:
		return string(n.Sememe)
	}
	return n.Text
}

// Tree is the sememe tree of one sense.
type Tree struct {
	Sense *core.Sense
	Root  *Node
	refs  map[*Node]int
}

// IsShared reports whether n is linked from more than one parent.
func (t *Tree) IsShared(n *Node) bool {
	return t.refs[n] > 1
}

// Walk visits every distinct node once in preorder. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	visited := make(map[*Node]struct{})
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if _, ok := visited[n]; ok {
			return
		}
		visited[n] = struct{}{}
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(t.Root, 0)
}

// Size returns the number of distinct nodes, the root included.
func (t *Tree) Size() int {
	size := 0
	t.Walk(func(*Node, int) bool {
		size++
		return true
	})
	return size
}

// Sememes returns the distinct bound sememes found within layers levels of
// the root, in breadth-first order. The root is layer 0 and the definition
// heads are layer 1. A negative layers value returns every sememe.
func (t *Tree) Sememes(layers int) []core.SememeID {
	var out []core.SememeID
	seen := make(map[core.SememeID]struct{})
	visited := map[*Node]struct{}{t.Root: {}}
	level := []*Node{t.Root}
	for depth := 0; len(level) > 0 && (layers < 0 || depth <= layers); depth++ {
		var next []*Node
		for _, n := range level {
			if n.Kind == core.NodeSememe {
				if _, ok := seen[n.Sememe]; !ok {
					seen[n.Sememe] = struct{}{}
					out = append(out, n.Sememe)
				}
			}
			for _, c := range n.Children {
				if _, ok := visited[c]; ok {
					continue
				}
				visited[c] = struct{}{}
				next = append(next, c)
			}
		}
		level = next
	}
	return out
}

// String renders the tree one node per line, indented by depth. Roles are
// shown as "role=" prefixes, expansion edges as "^", and a node linked a
// second time is printed as "@label" without its children.
func (t *Tree) String() string {
	var sb strings.Builder
	printed := make(map[*Node]struct{})
	var render func(n *Node, depth int)
	render = func(n *Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		if n.Expanded {
			sb.WriteString("^")
		}
		if n.Role != core.RoleNone {
			sb.WriteString(n.Role.String())
			sb.WriteString("=")
		}
		if _, ok := printed[n]; ok {
			sb.WriteString("@")
			sb.WriteString(n.Label())
			sb.WriteString("\n")
			return
		}
		printed[n] = struct{}{}
		if n.Kind == core.NodeLiteral {
			sb.WriteString("\"" + n.Text + "\"")
		} else {
			sb.WriteString(n.Label())
		}
		sb.WriteString("\n")
		for _, c := range n.Children {
			render(c, depth+1)
		}
	}
	render(t.Root, 0)
	return sb.String()
}
