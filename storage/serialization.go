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

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/hownet/core"
)

// Record serializers. Fields are written in declaration order; strings are
// length-prefixed and integers are varint encoded.
var (
	SememeRecordMUS   = sememeRecordMUS{}
	SenseRecordMUS    = senseRecordMUS{}
	RelationRecordMUS = relationRecordMUS{}
	ManifestMUS       = manifestMUS{}
)

type sememeRecordMUS struct{}

func (s sememeRecordMUS) Marshal(v core.SememeRecord, bs []byte) (n int) {
	return marshalStrings(bs, v.SememeID, v.EnGloss, v.ZhGloss, v.Frequency)
}

func (s sememeRecordMUS) Unmarshal(bs []byte) (v core.SememeRecord, n int, err error) {
	n, err = unmarshalStrings(bs, &v.SememeID, &v.EnGloss, &v.ZhGloss, &v.Frequency)
	return
}

func (s sememeRecordMUS) Size(v core.SememeRecord) int {
	return sizeStrings(v.SememeID, v.EnGloss, v.ZhGloss, v.Frequency)
}

type senseRecordMUS struct{}

func (s senseRecordMUS) Marshal(v core.SenseRecord, bs []byte) (n int) {
	return marshalStrings(bs, v.SenseID, v.WordEn, v.WordZh, v.POS, v.SememeExpression, v.ExternalSynsetID)
}

func (s senseRecordMUS) Unmarshal(bs []byte) (v core.SenseRecord, n int, err error) {
	n, err = unmarshalStrings(bs, &v.SenseID, &v.WordEn, &v.WordZh, &v.POS, &v.SememeExpression, &v.ExternalSynsetID)
	return
}

func (s senseRecordMUS) Size(v core.SenseRecord) int {
	return sizeStrings(v.SenseID, v.WordEn, v.WordZh, v.POS, v.SememeExpression, v.ExternalSynsetID)
}

type relationRecordMUS struct{}

func (s relationRecordMUS) Marshal(v core.RelationRecord, bs []byte) (n int) {
	return marshalStrings(bs, v.SrcID, v.RelationType, v.DstID, v.EntityKind)
}

func (s relationRecordMUS) Unmarshal(bs []byte) (v core.RelationRecord, n int, err error) {
	n, err = unmarshalStrings(bs, &v.SrcID, &v.RelationType, &v.DstID, &v.EntityKind)
	return
}

func (s relationRecordMUS) Size(v core.RelationRecord) int {
	return sizeStrings(v.SrcID, v.RelationType, v.DstID, v.EntityKind)
}

type manifestMUS struct{}

func (s manifestMUS) Marshal(v core.Manifest, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Sememes, bs)
	n += varint.Int.Marshal(v.Senses, bs[n:])
	n += varint.Int.Marshal(v.Relations, bs[n:])
	n += varint.Uint64.Marshal(uint64(v.Fingerprint), bs[n:])
	n += varint.Int64.Marshal(v.ImportedAt.UnixMicro(), bs[n:])
	return
}

func (s manifestMUS) Unmarshal(bs []byte) (v core.Manifest, n int, err error) {
	var n1 int
	if v.Sememes, n1, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	n += n1
	if v.Senses, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Relations, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	var fp uint64
	if fp, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Fingerprint = core.ID(fp)
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.ImportedAt = time.UnixMicro(micros).UTC()
	return
}

func (s manifestMUS) Size(v core.Manifest) (size int) {
	size = varint.Int.Size(v.Sememes)
	size += varint.Int.Size(v.Senses)
	size += varint.Int.Size(v.Relations)
	size += varint.Uint64.Size(uint64(v.Fingerprint))
	return size + varint.Int64.Size(v.ImportedAt.UnixMicro())
}

func marshalStrings(bs []byte, fields ...string) (n int) {
	for _, f := range fields {
		n += ord.String.Marshal(f, bs[n:])
	}
	return
}

func unmarshalStrings(bs []byte, fields ...*string) (n int, err error) {
	for _, f := range fields {
		var n1 int
		if *f, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
	}
	return
}

func sizeStrings(fields ...string) (size int) {
	for _, f := range fields {
		size += ord.String.Size(f)
	}
	return
}

// MarshalSememeRecord serializes a SememeRecord to bytes.
func MarshalSememeRecord(record *core.SememeRecord) []byte {
	buf := make([]byte, SememeRecordMUS.Size(*record))
	SememeRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalSememeRecord deserializes a SememeRecord from bytes.
func UnmarshalSememeRecord(data []byte) (*core.SememeRecord, error) {
	record, _, err := SememeRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: sememe record: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalSenseRecord serializes a SenseRecord to bytes.
func MarshalSenseRecord(record *core.SenseRecord) []byte {
	buf := make([]byte, SenseRecordMUS.Size(*record))
	SenseRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalSenseRecord deserializes a SenseRecord from bytes.
func UnmarshalSenseRecord(data []byte) (*core.SenseRecord, error) {
	record, _, err := SenseRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: sense record: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalRelationRecord serializes a RelationRecord to bytes.
func MarshalRelationRecord(record *core.RelationRecord) []byte {
	buf := make([]byte, RelationRecordMUS.Size(*record))
	RelationRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalRelationRecord deserializes a RelationRecord from bytes.
func UnmarshalRelationRecord(data []byte) (*core.RelationRecord, error) {
	record, _, err := RelationRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: relation record: %v", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest *core.Manifest) []byte {
	buf := make([]byte, ManifestMUS.Size(*manifest))
	ManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	manifest, _, err := ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrSerializationFailed, err)
	}
	return &manifest, nil
}
