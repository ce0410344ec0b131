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

package badger

import "encoding/binary"

// Key prefixes for different data types
const (
	sememeRecordPrefix   = "lexsem:"
	senseRecordPrefix    = "lexsen:"
	relationRecordPrefix = "lexrel:"
	sememeSeq            = "seq:lexsem"
	senseSeq             = "seq:lexsen"
	relationSeq          = "seq:lexrel"
	manifestKey          = "manifest"
)

// makeRecordKey generates a key for a record by insertion sequence.
// Format: prefix + big-endian sequence, so keys sort in insertion order.
func makeRecordKey(prefix string, seq uint64) []byte {
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

