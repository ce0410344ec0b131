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
	"github.com/poiesic/hownet/config"
	"github.com/poiesic/hownet/core"
)

// mergeSiblings merges sibling expression subtrees. Strict mode folds
// structurally identical siblings into the first occurrence. Fuzzy mode
// folds siblings with the same role and head, unioning their children
// recursively. The input is not modified.
func mergeSiblings(nodes []*core.ExprNode, mode config.MatchMode) []*core.ExprNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*core.ExprNode, 0, len(nodes))
	switch mode {
	case config.MatchStrict:
		seen := make(map[string]struct{}, len(nodes))
		for _, n := range nodes {
			key := n.Role.String() + "=" + n.Canonical()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			c := *n
			c.Children = mergeSiblings(n.Children, mode)
			out = append(out, &c)
		}
	default:
		index := make(map[mergeKey]int, len(nodes))
		for _, n := range nodes {
			key := mergeKey{role: n.Role, kind: n.Kind, head: n.Head()}
			if i, ok := index[key]; ok {
				merged := *out[i]
				merged.Children = append(append([]*core.ExprNode(nil), out[i].Children...), n.Children...)
				out[i] = &merged
				continue
			}
			index[key] = len(out)
			c := *n
			c.Children = append([]*core.ExprNode(nil), n.Children...)
			out = append(out, &c)
		}
		for _, n := range out {
			n.Children = mergeSiblings(n.Children, mode)
		}
	}
	return out
}

type mergeKey struct {
	role core.Role
	kind core.NodeKind
	head string
}
