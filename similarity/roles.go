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
	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
	"github.com/poiesic/hownet/graph"
)

// Role positions in a roleSet.
const (
	RoleFirstIndependent = iota
	RoleSecondIndependent
	RoleRelational
	RoleSymbolic
)

// roleSet holds the role sememes of one sense. A zero entry in ok marks a
// missing role.
type roleSet struct {
	ids  [config.NumRoles]core.SememeID
	ords [config.NumRoles]graph.Ordinal
	ok   [config.NumRoles]bool
	// canonical is the expression in canonical form, compared when no role is bound.
	canonical string
}

func (r *roleSet) set(i int, g *graph.Graph, n *core.ExprNode) bool {
	if r.ok[i] || !n.Bound() {
		return false
	}
	ord, found := g.SememeOrdinal(n.Sememe)
	if !found {
		return false
	}
	r.ids[i], r.ords[i], r.ok[i] = n.Sememe, ord, true
	return true
}

// extractRoles finds the four role sememes of a sense expression.
func extractRoles(g *graph.Graph, sense *core.Sense) roleSet {
	var r roleSet
	expr := sense.Expression
	if expr == nil || len(expr.Children) == 0 {
		return r
	}
	r.canonical = expr.Canonical()

	defs := expr.Children
	first := defs[0]
	r.set(RoleFirstIndependent, g, first)

	if len(defs) > 1 {
		for _, def := range defs[1:] {
			if r.set(RoleSecondIndependent, g, def) {
				break
			}
		}
	}
	if !r.ok[RoleSecondIndependent] {
		for _, c := range first.Children {
			if c.Role == core.RoleNone && r.set(RoleSecondIndependent, g, c) {
				break
			}
		}
	}

	for _, def := range defs {
		def.Walk(func(n *core.ExprNode, _ int) bool {
			switch n.Role.Class() {
			case core.RoleClassRelational:
				r.set(RoleRelational, g, n)
			case core.RoleClassSymbolic:
				r.set(RoleSymbolic, g, n)
			}
			return !(r.ok[RoleRelational] && r.ok[RoleSymbolic])
		})
	}
	return r
}
