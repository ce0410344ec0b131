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

// Package lexicon turns raw lexicon records into a graph.Graph.
//
// Records are read from JSON-lines files, optionally compressed with zstd or
// lz4, or from plain "src relation dst" taxonomy files. The Loader validates
// every record, parses sense expressions and resolves references under the
// configured policy:
//
//   - strict: the first unresolved reference aborts the load with a
//     *core.MissingReferenceError
//   - lenient (default): the edge is skipped or the expression node is
//     marked unresolved, and the skip is counted
//
// Sememes are loaded first, then senses, then relations.
package lexicon
