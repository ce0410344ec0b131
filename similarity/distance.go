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

import "github.com/poiesic/hownet/graph"

// distance returns the length of the shortest hierarchy path between a and
// b. The search runs from both ends, each side taking at most maxDepth
// hops. The boolean is false when no path within the bound exists.
func distance(g *graph.Graph, a, b graph.Ordinal, maxDepth int) (int, bool) {
	if a == b {
		return 0, true
	}
	if maxDepth <= 0 {
		return 0, false
	}

	fwd := &bfsSide{dist: map[graph.Ordinal]int{a: 0}, frontier: []graph.Ordinal{a}}
	bwd := &bfsSide{dist: map[graph.Ordinal]int{b: 0}, frontier: []graph.Ordinal{b}}
	for {
		side, other := fwd, bwd
		switch {
		case !fwd.canExpand(maxDepth) && !bwd.canExpand(maxDepth):
			return 0, false
		case !fwd.canExpand(maxDepth):
			side, other = bwd, fwd
		case bwd.canExpand(maxDepth) && len(bwd.frontier) < len(fwd.frontier):
			side, other = bwd, fwd
		}
		if d, met := side.expand(g, other); met {
			return d, true
		}
	}
}

type bfsSide struct {
	dist     map[graph.Ordinal]int
	frontier []graph.Ordinal
	level    int
}

func (s *bfsSide) canExpand(maxDepth int) bool {
	return len(s.frontier) > 0 && s.level < maxDepth
}

// expand advances one full level and reports the shortest meeting with
// other found on that level.
func (s *bfsSide) expand(g *graph.Graph, other *bfsSide) (int, bool) {
	best, met := 0, false
	var next []graph.Ordinal
	for _, u := range s.frontier {
		for _, v := range g.HierarchyNeighbors(u) {
			if _, seen := s.dist[v]; seen {
				continue
			}
			s.dist[v] = s.level + 1
			next = append(next, v)
			if od, ok := other.dist[v]; ok {
				if d := s.level + 1 + od; !met || d < best {
					best, met = d, true
				}
			}
		}
	}
	s.frontier = next
	s.level++
	return best, met
}

// distanceTable runs a single-source search from src and returns the
// distance of every sememe within maxDepth hops.
func distanceTable(g *graph.Graph, src graph.Ordinal, maxDepth int) map[graph.Ordinal]int {
	dist := map[graph.Ordinal]int{src: 0}
	frontier := []graph.Ordinal{src}
	for level := 0; level < maxDepth && len(frontier) > 0; level++ {
		var next []graph.Ordinal
		for _, u := range frontier {
			for _, v := range g.HierarchyNeighbors(u) {
				if _, seen := dist[v]; seen {
					continue
				}
				dist[v] = level + 1
				next = append(next, v)
			}
		}
		frontier = next
	}
	return dist
}
