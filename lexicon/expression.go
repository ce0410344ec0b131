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

package lexicon

import (
	"strings"

	"github.com/poiesic/hownet/core"
)

// remarkMarker starts a free-text remark that is not part of the expression.
const remarkMarker = "RMK="

// ParseExpression parses a KDML sense definition into an expression tree.
// The returned root has RoleSense and one child per ';'-separated definition.
// Every sememe head is returned as a NodeSememe; resolving heads against a
// graph is left to the caller.
//
// Failures are reported as *core.ParseError with the byte offset of the
// offending character.
func ParseExpression(raw string) (*core.ExprNode, error) {
	text := raw
	if i := strings.Index(text, remarkMarker); i >= 0 {
		text = text[:i]
	}
	p := &exprParser{raw: raw, text: text}
	return p.parseDefinition()
}

type exprParser struct {
	raw  string
	text string
	pos  int
}

func (p *exprParser) fail(reason string) error {
	return &core.ParseError{
		Record: "expression",
		Field:  "sememe_expression",
		Value:  p.raw,
		Offset: p.pos,
		Reason: reason,
	}
}

func (p *exprParser) eof() bool {
	return p.pos >= len(p.text)
}

func (p *exprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.text[p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.eof() {
		switch p.text[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.eof() {
			return p.fail("unbalanced brackets: expected '" + string(c) + "'")
		}
		return p.fail("expected '" + string(c) + "'")
	}
	p.pos++
	return nil
}

func (p *exprParser) parseDefinition() (*core.ExprNode, error) {
	root := &core.ExprNode{Kind: core.NodeRoot, Role: core.RoleSense}
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.peek() == ';' {
			p.pos++
			continue
		}
		node, _, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, node)

		p.skipSpace()
		if p.eof() {
			break
		}
		if p.peek() != ';' {
			return nil, p.fail("expected ';' between definitions")
		}
	}
	if len(root.Children) == 0 {
		p.pos = 0
		return nil, p.fail("expression has no definition")
	}
	return root, nil
}

// parseExpr parses '{' head [':' item (',' item)*] '}'. The boolean result
// reports whether the node's role was supplied by a '~' child.
func (p *exprParser) parseExpr() (*core.ExprNode, bool, error) {
	if err := p.expect('{'); err != nil {
		return nil, false, err
	}
	p.skipSpace()

	node := &core.ExprNode{}
	switch c := p.peek(); c {
	case '~', '?', '$':
		node.Kind = core.NodePlaceholder
		node.Text = string(c)
		p.pos++
	default:
		id := p.identifier()
		if id == "" {
			return nil, false, p.fail("empty identifier")
		}
		node.Kind = core.NodeSememe
		node.Sememe = core.SememeID(id)
	}

	p.skipSpace()
	if p.peek() == ':' {
		p.pos++
		for {
			child, err := p.parseItem()
			if err != nil {
				return nil, false, err
			}
			node.Children = append(node.Children, child)
			p.skipSpace()
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
	}
	if err := p.expect('}'); err != nil {
		return nil, false, err
	}

	filled := false
	kept := node.Children[:0]
	for _, child := range node.Children {
		if child.Kind == core.NodePlaceholder && child.Text == "~" {
			node.Role = child.Role
			filled = true
			continue
		}
		kept = append(kept, child)
	}
	node.Children = kept
	if len(node.Children) == 0 {
		node.Children = nil
	}
	return node, filled, nil
}

// parseItem parses [ROLE '='] (expr | '"' text '"').
func (p *exprParser) parseItem() (*core.ExprNode, error) {
	p.skipSpace()
	role := core.RoleNone
	if c := p.peek(); c != '{' && c != '"' {
		start := p.pos
		tag := p.identifier()
		if tag == "" {
			return nil, p.fail("expected role, expression or quoted text")
		}
		p.skipSpace()
		if p.peek() != '=' {
			return nil, p.fail("expected '=' after role " + tag)
		}
		r, err := core.ParseRole(tag)
		if err != nil {
			p.pos = start
			return nil, p.fail("unknown role tag " + tag)
		}
		role = r
		p.pos++
		p.skipSpace()
	}

	switch p.peek() {
	case '{':
		node, filled, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !filled {
			node.Role = role
		}
		return node, nil
	case '"':
		start := p.pos
		p.pos++
		end := strings.IndexByte(p.text[p.pos:], '"')
		if end < 0 {
			p.pos = start
			return nil, p.fail("unbalanced quotes")
		}
		node := &core.ExprNode{Kind: core.NodeLiteral, Role: role, Text: p.text[p.pos : p.pos+end]}
		p.pos += end + 1
		return node, nil
	}
	if p.eof() {
		return nil, p.fail("unbalanced brackets: expression ends inside an item")
	}
	return nil, p.fail("expected expression or quoted text")
}

// identifier reads up to the next structural character and trims spaces.
func (p *exprParser) identifier() string {
	start := p.pos
	for !p.eof() && !strings.ContainsRune("{}:,;=\"", rune(p.text[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.text[start:p.pos])
}
