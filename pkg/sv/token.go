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

// Package sv implements the small SystemVerilog frontend (lexer, recursive
// descent parser and elaborator) which stands in for the external frontend
// that spec.md declares out of scope.  It covers exactly the subset of the
// language needed to locate and eliminate cross-module references: module
// declarations (ANSI and non-ANSI), port and net declarations, module
// instantiation, continuous assignment and always blocks, and hierarchical
// name expressions (with array-index suffixes and absolute paths).  It does
// not attempt to be a complete SystemVerilog compiler.
package sv

import "github.com/opensv/xmreliminator/pkg/source"

// Kind identifies the lexical class of a Token.
type Kind uint

// Token kinds recognised by the lexer.
const (
	EOF Kind = iota
	IDENT
	NUMBER
	DOT
	COMMA
	SEMI
	COLON
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	HASH
	STAR
	ASSIGN_OP   // =
	NONBLOCK_OP // <=
	OPERATOR    // any other punctuation run treated as an operator (e.g. +, ==, &&)
	KW_MODULE
	KW_ENDMODULE
	KW_INPUT
	KW_OUTPUT
	KW_INOUT
	KW_WIRE
	KW_LOGIC
	KW_REG
	KW_ASSIGN
	KW_ALWAYS
	KW_ALWAYS_FF
	KW_ALWAYS_COMB
	KW_POSEDGE
	KW_NEGEDGE
	KW_BEGIN
	KW_END
	KW_IF
	KW_ELSE
	KW_INITIAL
)

var keywords = map[string]Kind{
	"module":      KW_MODULE,
	"endmodule":   KW_ENDMODULE,
	"input":       KW_INPUT,
	"output":      KW_OUTPUT,
	"inout":       KW_INOUT,
	"wire":        KW_WIRE,
	"logic":       KW_LOGIC,
	"reg":         KW_REG,
	"assign":      KW_ASSIGN,
	"always":      KW_ALWAYS,
	"always_ff":   KW_ALWAYS_FF,
	"always_comb": KW_ALWAYS_COMB,
	"posedge":     KW_POSEDGE,
	"negedge":     KW_NEGEDGE,
	"begin":       KW_BEGIN,
	"end":         KW_END,
	"if":          KW_IF,
	"else":        KW_ELSE,
	"initial":     KW_INITIAL,
}

// Token is a single lexical token together with its span in the original
// file and its literal text.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsNetKind determines whether this token introduces a net/variable
// declaration kind (wire, logic or reg).
func (k Kind) IsNetKind() bool {
	return k == KW_WIRE || k == KW_LOGIC || k == KW_REG
}

// IsDirection determines whether this token introduces a port direction.
func (k Kind) IsDirection() bool {
	return k == KW_INPUT || k == KW_OUTPUT || k == KW_INOUT
}
