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
	"fmt"
	"strings"
)

// RelationType is the closed vocabulary of edge types.
type RelationType uint8

const (
	RelationHypernym RelationType = iota + 1
	RelationHyponym
	RelationSynonym
	RelationAntonym
	RelationConverse
	RelationPart
	RelationWhole
	RelationAttribute
	RelationAttributeValue
	RelationMaterial
	RelationProduct
	RelationHost
	RelationRelated
)

var relationNames = [...]string{
	RelationHypernym:       "hypernym",
	RelationHyponym:        "hyponym",
	RelationSynonym:        "synonym",
	RelationAntonym:        "antonym",
	RelationConverse:       "converse",
	RelationPart:           "part",
	RelationWhole:          "whole",
	RelationAttribute:      "attribute",
	RelationAttributeValue: "attribute_value",
	RelationMaterial:       "material",
	RelationProduct:        "product",
	RelationHost:           "host",
	RelationRelated:        "related",
}

// String returns the canonical relation name.
func (r RelationType) String() string {
	if r.Valid() {
		return relationNames[r]
	}
	return fmt.Sprintf("relation(%d)", uint8(r))
}

// Valid reports whether r is part of the vocabulary.
func (r RelationType) Valid() bool {
	return r >= RelationHypernym && r <= RelationRelated
}

// IsHierarchy reports whether r forms the sememe hierarchy used for distances.
func (r RelationType) IsHierarchy() bool {
	return r == RelationHypernym || r == RelationHyponym
}

// Inverse returns the relation read in the opposite direction, or r itself
// when the relation is symmetric or has no named inverse.
func (r RelationType) Inverse() RelationType {
	switch r {
	case RelationHypernym:
		return RelationHyponym
	case RelationHyponym:
		return RelationHypernym
	case RelationPart:
		return RelationWhole
	case RelationWhole:
		return RelationPart
	case RelationAttribute:
		return RelationAttributeValue
	case RelationAttributeValue:
		return RelationAttribute
	case RelationMaterial:
		return RelationProduct
	case RelationProduct:
		return RelationMaterial
	}
	return r
}

// ParseRelationType parses a relation name. Matching ignores case, and
// spaces or hyphens are read as underscores ("attribute value" is accepted).
func ParseRelationType(s string) (RelationType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for i, name := range relationNames {
		if name != "" && name == key {
			return RelationType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown relation type %q", s)
}

// AllRelationTypes returns the vocabulary in declaration order.
func AllRelationTypes() []RelationType {
	out := make([]RelationType, 0, len(relationNames)-1)
	for r := RelationHypernym; r <= RelationRelated; r++ {
		out = append(out, r)
	}
	return out
}

// EntityKind tells which namespace a relation connects.
type EntityKind uint8

const (
	EntitySememe EntityKind = iota + 1
	EntitySense
)

// String returns "sememe" or "sense".
func (k EntityKind) String() string {
	switch k {
	case EntitySememe:
		return "sememe"
	case EntitySense:
		return "sense"
	}
	return fmt.Sprintf("entity(%d)", uint8(k))
}

// ParseEntityKind parses "sememe" or "sense".
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sememe":
		return EntitySememe, nil
	case "sense":
		return EntitySense, nil
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// Direction selects which edges of an entity a relation listing follows.
type Direction uint8

const (
	// DirectionOut follows edges leaving the entity.
	DirectionOut Direction = iota
	// DirectionIn follows edges arriving at the entity.
	DirectionIn
	// DirectionBoth lists outgoing edges first, then incoming ones.
	DirectionBoth
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d <= DirectionBoth
}

// String returns "out", "in" or "both".
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	case DirectionBoth:
		return "both"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// ParseDirection parses "out", "in" or "both".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "out":
		return DirectionOut, nil
	case "in":
		return DirectionIn, nil
	case "both":
		return DirectionBoth, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
