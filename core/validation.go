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

import "strings"

// ValidateSememeRecord checks the fields of a sememe record that do not need
// any other record to be checked.
//
// Validation rules:
//   - SememeID must not be blank
//
// NOT validated here (checked when the record is loaded):
//   - Frequency (parsed into an integer by the loader)
func ValidateSememeRecord(record *SememeRecord) error {
	if record == nil {
		return &ParseError{Record: "sememe", Offset: -1, Reason: "record is nil"}
	}
	if strings.TrimSpace(record.SememeID) == "" {
		return &ParseError{Record: "sememe", Field: "sememe_id", Offset: -1, Reason: "identifier cannot be empty"}
	}
	return nil
}

// ValidateSenseRecord checks the fields of a sense record.
//
// Validation rules:
//   - SenseID must not be blank
//   - at least one of WordEn and WordZh must be set
//   - POS must be a known tag
//   - SememeExpression must not be blank
func ValidateSenseRecord(record *SenseRecord) error {
	if record == nil {
		return &ParseError{Record: "sense", Offset: -1, Reason: "record is nil"}
	}
	if strings.TrimSpace(record.SenseID) == "" {
		return &ParseError{Record: "sense", Field: "sense_id", Offset: -1, Reason: "identifier cannot be empty"}
	}
	if strings.TrimSpace(record.WordEn) == "" && strings.TrimSpace(record.WordZh) == "" {
		return &ParseError{Record: "sense", ID: record.SenseID, Field: "word_en", Offset: -1, Reason: "sense has no word form"}
	}
	if _, err := ParsePOS(record.POS); err != nil {
		return &ParseError{Record: "sense", ID: record.SenseID, Field: "pos", Value: record.POS, Offset: -1, Reason: "unknown part-of-speech tag"}
	}
	if strings.TrimSpace(record.SememeExpression) == "" {
		return &ParseError{Record: "sense", ID: record.SenseID, Field: "sememe_expression", Offset: -1, Reason: "expression cannot be empty"}
	}
	return nil
}

// ValidateRelationRecord checks that a relation record names known tags.
// Endpoint resolution is left to the loader.
func ValidateRelationRecord(record *RelationRecord) error {
	if record == nil {
		return &ParseError{Record: "relation", Offset: -1, Reason: "record is nil"}
	}
	id := record.Tuple()
	if strings.TrimSpace(record.SrcID) == "" {
		return &ParseError{Record: "relation", ID: id, Field: "src_id", Offset: -1, Reason: "identifier cannot be empty"}
	}
	if strings.TrimSpace(record.DstID) == "" {
		return &ParseError{Record: "relation", ID: id, Field: "dst_id", Offset: -1, Reason: "identifier cannot be empty"}
	}
	if _, err := ParseRelationType(record.RelationType); err != nil {
		return &ParseError{Record: "relation", ID: id, Field: "relation_type", Value: record.RelationType, Offset: -1, Reason: "unknown relation type"}
	}
	if _, err := ParseEntityKind(record.EntityKind); err != nil {
		return &ParseError{Record: "relation", ID: id, Field: "entity_kind", Value: record.EntityKind, Offset: -1, Reason: "unknown entity kind"}
	}
	return nil
}
