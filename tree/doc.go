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

// Package tree builds sememe trees for senses.
//
// A tree starts from the parsed sense expression. Sibling subtrees are
// merged according to the matching mode, then every bound sememe is
// expanded along one relation (hypernym by default) for a bounded number of
// hops. Expansion stops at any sememe already on the current path, so
// cycles and self-loops in the relation data terminate. A sememe reached
// again elsewhere in the tree with the same remaining depth is linked to
// the node built the first time instead of being rebuilt; such nodes are
// reported by Tree.IsShared.
//
// Trees are read-only values. Because nodes can be shared, callers should
// traverse with Tree.Walk, which visits each node once.
package tree
