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

// Package importer copies lexicon record files into a lexicon store.
//
// An import reads every record file, builds a graph from the records to
// check them under the configured reference policy, and only then writes
// them to the store in batches. Each batch write is retried with
// exponential backoff. When all records are written, a manifest holding the
// record counts and the graph fingerprint is saved, so a later open can tell
// whether the store still describes the same lexicon.
package importer
