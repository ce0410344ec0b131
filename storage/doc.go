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

// Package storage provides the storage abstraction layer for hownet.
//
// A lexicon store keeps the raw sememe, sense and relation records of an
// imported lexicon so that a graph can be rebuilt without re-reading the
// source files. The graph itself is never persisted; it is rebuilt from
// records on every open.
//
// # Architecture
//
//   - LexiconRepository: append and iterate the three record kinds
//   - ManifestRepository: the manifest written at the end of an import
//   - Repository: transaction support and Close, shared by both
//
// # Usage
//
// Open a store backed by BadgerDB:
//
//	repo, manifests, backend, err := badger.OpenRepositories("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, manifests, backend, err := badger.NewMemoryRepositories()
//
// # Serialization
//
// Records are encoded with mus-go. The serializers in this package write
// every field in declaration order, so changing a record struct changes
// the on-disk format.
package storage
