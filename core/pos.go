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

// POS is a part-of-speech tag.
type POS uint8

const (
	POSNoun POS = iota + 1
	POSVerb
	POSAdj
	POSAdv
	POSPron
	POSNum
	POSClassifier
	POSPrep
	POSConj
	POSStruct
	POSParticle
	POSEcho
	POSCoor
	POSPhrase
	POSPrefix
	POSSuffix
	POSPunct
	POSExpr
	POSLetter
)

var posNames = [...]string{
	POSNoun:       "noun",
	POSVerb:       "verb",
	POSAdj:        "adj",
	POSAdv:        "adv",
	POSPron:       "pron",
	POSNum:        "num",
	POSClassifier: "classifier",
	POSPrep:       "prep",
	POSConj:       "conj",
	POSStruct:     "stru",
	POSParticle:   "aux",
	POSEcho:       "echo",
	POSCoor:       "coor",
	POSPhrase:     "pp",
	POSPrefix:     "prefix",
	POSSuffix:     "suffix",
	POSPunct:      "punc",
	POSExpr:       "expr",
	POSLetter:     "letter",
}

// HowNet abbreviations and common spellings.
var posAliases = map[string]POS{
	"n":           POSNoun,
	"v":           POSVerb,
	"a":           POSAdj,
	"adjective":   POSAdj,
	"adverb":      POSAdv,
	"pronoun":     POSPron,
	"numeral":     POSNum,
	"clas":        POSClassifier,
	"preposition": POSPrep,
	"conjunction": POSConj,
	"struct":      POSStruct,
	"particle":    POSParticle,
	"punct":       POSPunct,
}

// String returns the canonical lowercase tag.
func (p POS) String() string {
	if p.Valid() {
		return posNames[p]
	}
	return fmt.Sprintf("pos(%d)", uint8(p))
}

// Valid reports whether p is one of the known tags.
func (p POS) Valid() bool {
	return p >= POSNoun && p <= POSLetter
}

// ParsePOS parses a tag, case-insensitively, by canonical name or alias.
func ParsePOS(s string) (POS, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range posNames {
		if name != "" && name == key {
			return POS(i), nil
		}
	}
	if p, ok := posAliases[key]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown part-of-speech tag %q", s)
}

// AllPOS returns every known tag in declaration order.
func AllPOS() []POS {
	out := make([]POS, 0, len(posNames)-1)
	for p := POSNoun; p <= POSLetter; p++ {
		out = append(out, p)
	}
	return out
}

// Lang selects which word forms a lookup considers.
type Lang uint8

const (
	// LangAll searches English forms first, then Chinese.
	LangAll Lang = iota
	LangEn
	LangZh
)

// String returns "all", "en" or "zh".
func (l Lang) String() string {
	switch l {
	case LangAll:
		return "all"
	case LangEn:
		return "en"
	case LangZh:
		return "zh"
	}
	return fmt.Sprintf("lang(%d)", uint8(l))
}

// Valid reports whether l is a known language selector.
func (l Lang) Valid() bool {
	return l <= LangZh
}

// ParseLang parses "en", "zh" or "all". The empty string means all.
func ParseLang(s string) (Lang, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return LangAll, nil
	case "en", "english":
		return LangEn, nil
	case "zh", "ch", "chinese":
		return LangZh, nil
	}
	return 0, fmt.Errorf("unknown language %q", s)
}
