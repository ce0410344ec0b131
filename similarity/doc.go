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

// Package similarity scores senses and words by their sememe annotation.
//
// Each sense expression contributes up to four role sememes, in this order:
//
//  1. the first independent sememe: head of the first definition
//  2. the second independent sememe: head of the next definition, or the
//     first role-less child of the first definition
//  3. the relational sememe: first node under a relational role (agent, patient, ...)
//  4. the symbolic sememe: first node under a symbolic role (host, modifier, domain, ...)
//
// Two role sememes are compared by their shortest distance d over the
// hypernym/hyponym hierarchy, read as undirected, giving alpha/(alpha+d).
// The sense score is the weighted sum of the role scores. A role absent on
// one side scores 0; a role absent on both sides is dropped and the
// remaining weights are renormalised, so that a sense always scores exactly
// 1 against itself.
//
// Word similarity is the best score over all sense pairs of the two words.
// Nearest-word search fans the candidate vocabulary out over a worker pool
// and merges per-worker top-K heaps deterministically.
package similarity
