// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package sexp

// Parse a given string into an S-expression, or return an error if the string
// is malformed.
func Parse(s string) (SExp, error) {
	srcfile := NewSourceFile("", []byte(s))
	sExp, _, err := srcfile.Parse()
	//
	return sExp, err
}

// ParseAll parses a given string into zero or more S-expressions, whilst
// returning an error if the string is malformed.
func ParseAll(s string) ([]SExp, error) {
	srcfile := NewSourceFile("", []byte(s))
	terms, _, err := srcfile.ParseAll()
	//
	return terms, err
}

// Parser represents a parser in the process of parsing a given string into one
// or more S-expressions.
type Parser struct {
	// Source file being parsed
	srcfile *SourceFile
	// Cache (for simplicity)
	text []rune
	// Determine current position within text
	index int
	// Mapping from constructed S-Expressions to their spans in the original text.
	srcmap *SourceMap[SExp]
}

// NewParser constructs a new instance of Parser
func NewParser(srcfile *SourceFile) *Parser {
	// Construct initial parser.
	return &Parser{
		srcfile: srcfile,
		text:    srcfile.contents,
		index:   0,
		srcmap:  NewSourceMap[SExp](srcfile.contents),
	}
}

// SourceMap returns the source map constructed for the S-Expressions parsed by
// this parser.
func (p *Parser) SourceMap() *SourceMap[SExp] {
	return p.srcmap
}

// Parse a given string into an S-Expression, or produce an error.
func (p *Parser) Parse() (SExp, error) {
	var term SExp
	// Skip over any whitespace.  This is import to get the correct starting
	// point for this term.
	start := p.skipWhitespace()
	p.index = start
	token := p.Next()
	//
	if token == nil {
		return nil, nil
	} else if len(token) == 1 && token[0] == ')' {
		p.index-- // backup
		return nil, p.error("unexpected end-of-list")
	} else if len(token) == 1 && token[0] == '(' {
		var elements []SExp

		for c := p.Lookahead(0); c == nil || *c != ')'; c = p.Lookahead(0) {
			// Parse next element
			element, err := p.Parse()
			if err != nil {
				return nil, err
			} else if element == nil {
				p.index-- // backup
				return nil, p.error("unexpected end-of-file")
			}
			// Continue around!
			elements = append(elements, element)
		}
		// Consume right-brace
		p.Next()
		//
		term = &List{elements}
	} else {
		term = &Symbol{string(token)}
	}
	// Register item in source map
	p.srcmap.Put(term, NewSpan(start, p.index))
	//
	return term, nil
}

// Next extracts the next token from a given string.
func (p *Parser) Next() []rune {
	index := p.skipWhitespace()
	p.index = index
	//
	if index == len(p.text) {
		return nil
	}
	//
	switch p.text[index] {
	case '(', ')':
		// List begin / end
		p.index = p.index + 1
		return p.text[index:p.index]
	case ';':
		// Comment
		p.skipComment()
		return p.Next()
	}
	// Symbol
	return p.parseSymbol()
}

// Lookahead and see what punctuation is next.  Observe that whitespace and
// comments are skipped over.
func (p *Parser) Lookahead(i int) *rune {
	// Compute actual position within text
	pos := i + p.index
	// Check what's there
	if len(p.text) > pos {
		switch p.text[pos] {
		case '(', ')':
			return &p.text[pos]
		case ';':
			for pos < len(p.text) && p.text[pos] != '\n' {
				pos++
			}

			return p.Lookahead(pos - p.index)
		case ' ', '\t', '\r', '\n':
			return p.Lookahead(i + 1)
		default:
			return nil
		}
	}
	// End-of-file is reported as a missing close bracket by the caller.
	return nil
}

// Determine the index of the next non-whitespace character, without changing
// the current position.
func (p *Parser) skipWhitespace() int {
	index := p.index
	//
	for index < len(p.text) {
		switch p.text[index] {
		case ' ', '\t', '\r', '\n':
			index++
		default:
			return index
		}
	}
	//
	return index
}

func (p *Parser) parseSymbol() []rune {
	// Parse token
	i := len(p.text)

	for j := p.index; j < i; j++ {
		c := p.text[j]
		if c == ')' || c == '(' || c == ' ' || c == '\n' || c == '\t' || c == '\r' || c == ';' {
			i = j
			break
		}
	}
	// Reached end of token
	token := p.text[p.index:i]
	p.index = i

	return token
}

func (p *Parser) skipComment() {
	for p.index < len(p.text) && p.text[p.index] != '\n' {
		p.index++
	}
}

// Construct a parser error at the current position in the input stream.
func (p *Parser) error(msg string) *SyntaxError {
	span := NewSpan(p.index, p.index+1)
	return p.srcfile.SyntaxError(span, msg)
}
