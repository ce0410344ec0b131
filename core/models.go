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

package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived 64-bit digest.
// Used for fingerprints and other identity checks over loaded content.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SememeID identifies a sememe. By convention it is the "english|chinese" pair, e.g. "human|人".
type SememeID string

// SenseID identifies a sense.
type SenseID string

// Sememe is an atomic semantic primitive.
// Relation edges are held by the graph, not by the sememe itself.
type Sememe struct {
	ID        SememeID
	En        string
	Zh        string
	Frequency int
}

// String returns the sememe identifier.
func (s *Sememe) String() string {
	return string(s.ID)
}

// Sense is one meaning of a word.
type Sense struct {
	ID     SenseID
	WordEn string
	WordZh string
	POS    POS
	// Expression is the parsed sememe expression. The root has RoleSense and one child per definition.
	Expression *ExprNode
	// RawExpression is the expression as it appeared in the source record.
	RawExpression string
	// SynsetID is an optional external cross-lingual synset identifier, passed through untouched.
	SynsetID string
}

// String returns a short "id|en|zh" representation.
func (s *Sense) String() string {
	return string(s.ID) + "|" + s.WordEn + "|" + s.WordZh
}

// Word returns the sense's word form in the given language.
// LangAll returns the English form, falling back to Chinese when it is empty.
func (s *Sense) Word(lang Lang) string {
	switch lang {
	case LangZh:
		return s.WordZh
	case LangEn:
		return s.WordEn
	}
	if s.WordEn != "" {
		return s.WordEn
	}
	return s.WordZh
}

// Relation is a typed edge as seen from one of its endpoints. Target is the
// other endpoint; Incoming is set when the edge runs from Target.
type Relation struct {
	Type     RelationType
	Target   string
	Incoming bool
}

// SenseRecord is a raw sense record as produced by an upstream record source.
type SenseRecord struct {
	SenseID          string `json:"sense_id" yaml:"sense_id"`
	WordEn           string `json:"word_en" yaml:"word_en"`
	WordZh           string `json:"word_zh" yaml:"word_zh"`
	POS              string `json:"pos" yaml:"pos"`
	SememeExpression string `json:"sememe_expression" yaml:"sememe_expression"`
	ExternalSynsetID string `json:"external_synset_id,omitempty" yaml:"external_synset_id,omitempty"`
}

// SememeRecord is a raw sememe record. Frequency is kept as text so that
// malformed values surface as parse errors during load.
type SememeRecord struct {
	SememeID  string `json:"sememe_id" yaml:"sememe_id"`
	EnGloss   string `json:"en_gloss" yaml:"en_gloss"`
	ZhGloss   string `json:"zh_gloss" yaml:"zh_gloss"`
	Frequency string `json:"frequency" yaml:"frequency"`
}

// RelationRecord is a raw relation record.
type RelationRecord struct {
	SrcID        string `json:"src_id" yaml:"src_id"`
	RelationType string `json:"relation_type" yaml:"relation_type"`
	DstID        string `json:"dst_id" yaml:"dst_id"`
	EntityKind   string `json:"entity_kind" yaml:"entity_kind"`
}

// Tuple returns "src relation dst", the line form used by taxonomy files.
func (r *RelationRecord) Tuple() string {
	return strings.Join([]string{r.SrcID, r.RelationType, r.DstID}, " ")
}

// Manifest describes the content of an imported lexicon store.
type Manifest struct {
	Sememes     int
	Senses      int
	Relations   int
	Fingerprint ID
	ImportedAt  time.Time
}

// Stats summarises a loaded graph.
type Stats struct {
	Sememes           int
	Senses            int
	SememeEdges       int
	SenseEdges        int
	EnglishWords      int
	ChineseWords      int
	SkippedReferences int
	Fingerprint       ID
}
