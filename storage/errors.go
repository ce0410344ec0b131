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

package storage

import "errors"

var (
	// ErrNotFound is returned when a store holds no value for a key, such
	// as a store that was never imported into.
	ErrNotFound = errors.New("not found in lexicon store")

	// ErrStorageClosed is returned by operations on a closed store.
	ErrStorageClosed = errors.New("lexicon store is closed")

	// ErrManifestMismatch is returned when the stored records do not match
	// the manifest of the import that wrote them.
	ErrManifestMismatch = errors.New("lexicon store does not match its import manifest")

	// ErrSerializationFailed wraps record encoding and decoding failures.
	ErrSerializationFailed = errors.New("record serialization failed")
)
