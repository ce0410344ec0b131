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
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	// ErrParse indicates a raw record violated the expected field grammar.
	ErrParse = errors.New("parse error")

	// ErrMissingReference indicates a relation or expression referenced an unknown entity.
	ErrMissingReference = errors.New("missing reference")

	// ErrInvalidQuery indicates a caller-supplied query parameter is outside its valid domain.
	ErrInvalidQuery = errors.New("invalid query")
)

// ParseError reports a malformed input record.
type ParseError struct {
	// Record names the record kind ("sense", "sememe", "relation", "expression").
	Record string
	// ID is the identifier of the offending record, when known.
	ID string
	// Field is the offending field.
	Field string
	// Value is the offending value.
	Value string
	// Offset is the byte offset inside Value, or -1.
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s", e.Record)
	if e.ID != "" {
		msg += fmt.Sprintf(" %q", e.ID)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %s", e.Field)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	msg += ": " + e.Reason
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	return msg
}

// Unwrap exposes ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// MissingReferenceError reports a reference to an entity that was never loaded.
type MissingReferenceError struct {
	Kind EntityKind
	// From and To are the endpoints of the reference as written.
	From     string
	To       string
	Relation string
	// Missing is the endpoint that is not loaded.
	Missing string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("missing %s %q in reference %q -%s-> %q", e.Kind, e.Missing, e.From, e.Relation, e.To)
}

// Unwrap exposes ErrMissingReference.
func (e *MissingReferenceError) Unwrap() error {
	return ErrMissingReference
}

// InvalidQueryError reports a malformed query parameter.
type InvalidQueryError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// Unwrap exposes ErrInvalidQuery.
func (e *InvalidQueryError) Unwrap() error {
	return ErrInvalidQuery
}

// NewInvalidQuery builds an InvalidQueryError.
func NewInvalidQuery(param string, value any, reason string) error {
	return &InvalidQueryError{Param: param, Value: value, Reason: reason}
}
