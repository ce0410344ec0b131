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

package core

import "strings"

// NodeKind tells what an expression node is bound to.
type NodeKind uint8

const (
	// NodeRoot is the synthetic root of a sense expression.
	NodeRoot NodeKind = iota
	// NodeSememe is bound to a loaded sememe.
	NodeSememe
	// NodeUnresolved names a sememe that was not loaded (lenient loads only).
	NodeUnresolved
	// NodePlaceholder is one of the "?" or "$" markers.
	NodePlaceholder
	// NodeLiteral holds quoted text.
	NodeLiteral
)

// ExprNode is one node of a sememe expression role tree.
type ExprNode struct {
	Role     Role
	Kind     NodeKind
	Sememe   SememeID
	Text     string
	Children []*ExprNode
}

// Bound reports whether the node references a loaded sememe.
func (n *ExprNode) Bound() bool {
	return n != nil && n.Kind == NodeSememe
}

// Head returns the label of the node: the sememe identifier, the
// placeholder symbol or the literal text.
func (n *ExprNode) Head() string {
	switch n.Kind {
	case NodeSememe, NodeUnresolved:
		return string(n.Sememe)
	case NodeRoot:
		return ""
	}
	return n.Text
}

// Walk visits n and its descendants in preorder. Returning false from fn
// skips the children of the visited node.
func (n *ExprNode) Walk(fn func(node *ExprNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *ExprNode) walk(fn func(*ExprNode, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// SememeIDs returns the distinct bound sememes in preorder.
func (n *ExprNode) SememeIDs() []SememeID {
	var out []SememeID
	seen := make(map[SememeID]struct{})
	n.Walk(func(node *ExprNode, _ int) bool {
		if node.Bound() {
			if _, ok := seen[node.Sememe]; !ok {
				seen[node.Sememe] = struct{}{}
				out = append(out, node.Sememe)
			}
		}
		return true
	})
	return out
}

// Canonical renders the subtree in expression syntax. Two subtrees are a
// structural match when their canonical forms are equal.
func (n *ExprNode) Canonical() string {
	var sb strings.Builder
	n.canonical(&sb)
	return sb.String()
}

func (n *ExprNode) canonical(sb *strings.Builder) {
	if n.Kind == NodeRoot {
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(';')
			}
			if c.Role != RoleNone {
				sb.WriteString(c.Role.String())
				sb.WriteByte('=')
			}
			c.canonical(sb)
		}
		return
	}
	if n.Kind == NodeLiteral {
		sb.WriteByte('"')
		sb.WriteString(n.Text)
		sb.WriteByte('"')
		return
	}
	sb.WriteByte('{')
	sb.WriteString(n.Head())
	for i, c := range n.Children {
		if i == 0 {
			sb.WriteByte(':')
		} else {
			sb.WriteByte(',')
		}
		if c.Role != RoleNone {
			sb.WriteString(c.Role.String())
			sb.WriteByte('=')
		}
		c.canonical(sb)
	}
	sb.WriteByte('}')
}

// Clone returns a deep copy of the subtree.
func (n *ExprNode) Clone() *ExprNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Children = make([]*ExprNode, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}
