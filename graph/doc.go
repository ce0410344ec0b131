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

// Package graph holds the immutable sememe and sense index.
//
// Entities live in arenas addressed by dense Ordinal values. Word forms,
// typed edges and the sememe-to-sense reverse index all point into those
// arenas, so a Graph can be shared freely between goroutines once Build
// has returned.
//
// A Graph is assembled through a Builder:
//
//	b := graph.NewBuilder()
//	_ = b.AddSememe(&core.Sememe{ID: "human|人"})
//	_ = b.AddSense(sense)
//	_ = b.AddRelation(core.EntitySememe, "human|人", core.RelationHypernym, "animate|生物")
//	g := b.Build()
//
// Lookups never fail for absent entities; they return empty results.
package graph
