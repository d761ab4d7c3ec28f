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
package source

import (
	"github.com/opensv/xmreliminator/pkg/util"
)

// Token associates a piece of information (its Kind, a caller-defined tag)
// with a given span of characters in the string being scanned.
type Token struct {
	Kind uint
	Span Span
}

// Scanner looks at a given sequence of items, starting from the beginning,
// and attempts to consume one or more of them.  If it cannot consume any,
// then None is returned.  Otherwise, it returns a Token spanning
// characters 0..n where n is one past the last character consumed.
type Scanner[T any] interface {
	Scan([]T) util.Option[Token]
}

// Lexer provides a top-level construct for tokenising a given input
// sequence using a caller-supplied Scanner.
type Lexer[T any] struct {
	items   []T
	index   int
	scanner Scanner[T]
	buffer  []Token
}

// NewLexer constructs a new lexer with a given scanner.
func NewLexer[T any](input []T, scanner Scanner[T]) *Lexer[T] {
	return &Lexer[T]{
		input,
		0,
		scanner,
		nil,
	}
}

// Index returns the lexer's current position within the original sequence.
func (p *Lexer[T]) Index() int {
	return p.index
}

// Remaining determines how many items from the original sequence are left.
func (p *Lexer[T]) Remaining() uint {
	return uint(max(0, len(p.items)-p.index))
}

// HasNext checks whether or not there are any items remaining to visit.
func (p *Lexer[T]) HasNext() bool {
	p.scan()
	return len(p.buffer) > 0
}

// Next returns the next item and advances the lexer.
func (p *Lexer[T]) Next() Token {
	next := p.buffer[0]
	p.buffer = p.buffer[1:]
	//
	if p.index == len(p.items) {
		// EOF condition
		p.index++
	} else {
		p.index = next.Span.End()
	}
	//
	return next
}

// Lookahead peeks at the next token without consuming it.
func (p *Lexer[T]) Lookahead() (Token, bool) {
	p.scan()
	//
	if len(p.buffer) == 0 {
		return Token{}, false
	}
	//
	return p.buffer[0], true
}

// Collect is a convenience function which parses all remaining tokens in one
// go, producing an array of tokens.
func (p *Lexer[T]) Collect() []Token {
	var tokens []Token
	// Keep scanning
	for p.HasNext() {
		tokens = append(tokens, p.Next())
	}
	//
	return tokens
}

// internal scan function.
func (p *Lexer[T]) scan() {
	if len(p.buffer) == 0 && p.index <= len(p.items) {
		// Look for item
		next := p.scanner.Scan(p.items[p.index:])
		// Check what we got
		if next.HasValue() {
			n := next.Unwrap()
			// Shift span into correct position
			n.Span = NewSpan(n.Span.Start()+p.index, n.Span.End()+p.index)
			// Insert into buffer
			p.buffer = append(p.buffer, n)
		}
	}
}
