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

// Role tags the position a sememe occupies inside an expression.
type Role uint8

// RoleClass groups roles for similarity scoring.
type RoleClass uint8

const (
	// RoleClassNone covers the root and role-less (independent) positions.
	RoleClassNone RoleClass = iota
	// RoleClassRelational covers event roles (agent, patient, location, ...).
	RoleClassRelational
	// RoleClassSymbolic covers attribute and marker roles (host, modifier, domain, ...).
	RoleClassSymbolic
)

const (
	// RoleNone marks a node without an explicit role tag.
	RoleNone Role = iota
	// RoleSense marks the root of an expression tree.
	RoleSense
	RoleAgent
	RolePatient
	RoleContent
	RoleExperiencer
	RolePossessor
	RoleRelevant
	RoleExistent
	RoleIsa
	RolePartner
	RoleCoagent
	RoleContrast
	RoleTarget
	RoleSource
	RoleBeneficiary
	RoleCause
	RoleResult
	RoleResultEvent
	RoleResultContent
	RoleResultWhole
	RoleResultIsa
	RolePurpose
	RoleScope
	RoleLocation
	RoleLocationIni
	RoleLocationFin
	RoleLocationThru
	RoleTime
	RoleTimeIni
	RoleTimeFin
	RoleDuration
	RoleFrequency
	RoleInstrument
	RoleMeans
	RoleMaterial
	RoleManner
	RoleDegree
	RoleQuantity
	RoleRange
	RoleDirection
	RoleDistance
	RoleAccompaniment
	RoleCondition
	RoleConcession
	RoleBesides
	RoleExcept
	RoleCost
	RoleAccordingTo
	RoleConcerning
	RoleSequence
	RoleTimes
	RoleStateIni
	RoleStateFin
	RoleSincePeriod
	RoleSincePoint
	RoleEventProcess
	RoleCoEvent
	RoleWhole
	RolePartPosition
	RoleContentProduct
	RoleHost
	RoleHostOf
	RoleModifier
	RoleBelong
	RoleDomain
	RoleRelateTo
	RoleRestrictive
	RoleDescriptive
	RoleComment
	RoleMaterialOf
	RolePurposeOf
	RolePartOf
	RoleTimeFeature
	RoleLocationFeature
	RoleEmotion
	RoleQualification
	RoleSucceeding
	RolePreceding
)

var roleNames = [...]string{
	RoleNone:            "none",
	RoleSense:           "sense",
	RoleAgent:           "agent",
	RolePatient:         "patient",
	RoleContent:         "content",
	RoleExperiencer:     "experiencer",
	RolePossessor:       "possessor",
	RoleRelevant:        "relevant",
	RoleExistent:        "existent",
	RoleIsa:             "isa",
	RolePartner:         "partner",
	RoleCoagent:         "coagent",
	RoleContrast:        "contrast",
	RoleTarget:          "target",
	RoleSource:          "source",
	RoleBeneficiary:     "beneficiary",
	RoleCause:           "cause",
	RoleResult:          "result",
	RoleResultEvent:     "ResultEvent",
	RoleResultContent:   "ResultContent",
	RoleResultWhole:     "ResultWhole",
	RoleResultIsa:       "ResultIsa",
	RolePurpose:         "purpose",
	RoleScope:           "scope",
	RoleLocation:        "location",
	RoleLocationIni:     "LocationIni",
	RoleLocationFin:     "LocationFin",
	RoleLocationThru:    "LocationThru",
	RoleTime:            "time",
	RoleTimeIni:         "TimeIni",
	RoleTimeFin:         "TimeFin",
	RoleDuration:        "duration",
	RoleFrequency:       "frequency",
	RoleInstrument:      "instrument",
	RoleMeans:           "means",
	RoleMaterial:        "material",
	RoleManner:          "manner",
	RoleDegree:          "degree",
	RoleQuantity:        "quantity",
	RoleRange:           "range",
	RoleDirection:       "direction",
	RoleDistance:        "distance",
	RoleAccompaniment:   "accompaniment",
	RoleCondition:       "condition",
	RoleConcession:      "concession",
	RoleBesides:         "besides",
	RoleExcept:          "except",
	RoleCost:            "cost",
	RoleAccordingTo:     "AccordingTo",
	RoleConcerning:      "concerning",
	RoleSequence:        "sequence",
	RoleTimes:           "times",
	RoleStateIni:        "StateIni",
	RoleStateFin:        "StateFin",
	RoleSincePeriod:     "SincePeriod",
	RoleSincePoint:      "SincePoint",
	RoleEventProcess:    "EventProcess",
	RoleCoEvent:         "CoEvent",
	RoleWhole:           "whole",
	RolePartPosition:    "PartPosition",
	RoleContentProduct:  "ContentProduct",
	RoleHost:            "host",
	RoleHostOf:          "HostOf",
	RoleModifier:        "modifier",
	RoleBelong:          "belong",
	RoleDomain:          "domain",
	RoleRelateTo:        "RelateTo",
	RoleRestrictive:     "restrictive",
	RoleDescriptive:     "descriptive",
	RoleComment:         "comment",
	RoleMaterialOf:      "MaterialOf",
	RolePurposeOf:       "PurposeOf",
	RolePartOf:          "PartOf",
	RoleTimeFeature:     "TimeFeature",
	RoleLocationFeature: "LocationFeature",
	RoleEmotion:         "emotion",
	RoleQualification:   "qualification",
	RoleSucceeding:      "succeeding",
	RolePreceding:       "preceding",
}

// roleByName indexes both the exact tag and its lowercase form.
var roleByName = func() map[string]Role {
	m := make(map[string]Role, 2*len(roleNames))
	for i, name := range roleNames {
		if Role(i) == RoleNone {
			continue
		}
		m[name] = Role(i)
		if _, taken := m[strings.ToLower(name)]; !taken {
			m[strings.ToLower(name)] = Role(i)
		}
	}
	return m
}()

// String returns the role tag as written in expressions.
func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return int(r) < len(roleNames)
}

// Class returns the scoring class of the role.
func (r Role) Class() RoleClass {
	switch {
	case r >= RoleAgent && r <= RoleContentProduct:
		return RoleClassRelational
	case r >= RoleHost && r <= RolePreceding:
		return RoleClassSymbolic
	}
	return RoleClassNone
}

// ParseRole parses a role tag. Exact HowNet spelling is tried first, then a
// case-insensitive match. "none" and "sense" are not accepted as tags.
func ParseRole(s string) (Role, error) {
	key := strings.TrimSpace(s)
	if r, ok := roleByName[key]; ok && r != RoleSense {
		return r, nil
	}
	if r, ok := roleByName[strings.ToLower(key)]; ok && r != RoleSense {
		return r, nil
	}
	return RoleNone, fmt.Errorf("unknown role tag %q", s)
}
