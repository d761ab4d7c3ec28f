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
package sv

import "github.com/opensv/xmreliminator/pkg/source"

// Node provides common functionality across all elements of the syntax
// tree: every node knows the span of text it was parsed from, which the
// rewriter uses to splice replacement text back into the original file.
type Node interface {
	Span() source.Span
}

// Range captures an optional "[hi:lo]" bit-range appearing after a type in a
// port or net declaration.
type Range struct {
	Hi, Lo int
	Span_  source.Span
}

// Span implements Node.
func (r *Range) Span() source.Span { return r.Span_ }

// Width returns the number of bits spanned by this range.
func (r *Range) Width() uint {
	if r.Hi >= r.Lo {
		return uint(r.Hi-r.Lo) + 1
	}
	//
	return uint(r.Lo-r.Hi) + 1
}

// File is the root of a single parsed source file: an ordered list of
// top-level module declarations.
type File struct {
	Path    string
	Source  *source.File
	Modules []*ModuleDecl
}

// ModuleDecl is a single "module ... endmodule" declaration.
type ModuleDecl struct {
	Name Token
	// ANSIPorts is true when the header carries a full ANSI port list (each
	// entry has its own direction/kind); false for "module m;" (no list) or
	// a non-ANSI list of bare names.
	ANSIPorts bool
	// HasPortList is true when the header had any parenthesised list at
	// all (ANSI or non-ANSI).
	HasPortList bool
	// HeaderSpan_ covers "module NAME ( ... )" up to (but excluding) the ';'.
	HeaderSpan_ source.Span
	// PortListSpan_ covers just the "( ... )" portion, if present.
	PortListSpan_ source.Span
	// PortListEndSpan_ is the zero-length span immediately before the
	// closing ')' of the port list, i.e. the insertion point for new ports.
	PortListEndSpan_ source.Span
	// Non-ANSI / no-list port names appearing in the header, in order.
	HeaderPortNames []string
	// BodyStartSpan_ is the zero-length span immediately after the header's
	// terminating ';' — the insertion point for new wire declarations (and,
	// for non-ANSI/no-list headers, new port-direction declarations).
	BodyStartSpan_ source.Span
	// BodyEndSpan_ is the zero-length span immediately before "endmodule" —
	// the insertion point for generated assigns and pipeline blocks.
	BodyEndSpan_ source.Span
	Ports       []*PortDecl
	Items       []Item
	EndSpan_    source.Span
}

// Span implements Node.
func (m *ModuleDecl) Span() source.Span { return m.HeaderSpan_.Merge(m.EndSpan_) }

// Item is anything which can appear in a module body.
type Item interface {
	Node
	item()
}

// PortDecl declares one or more ports of the same direction/kind/width,
// e.g. "output logic [7:0] data, valid;". Also used for the synthesised
// direction declarations of a non-ANSI/no-list header.
type PortDecl struct {
	Direction Kind // KW_INPUT, KW_OUTPUT or KW_INOUT
	Kind      Kind // KW_WIRE, KW_LOGIC or KW_REG (zero value treated as wire)
	Width     *Range
	Names     []string
	Span_     source.Span
}

func (*PortDecl) item()              {}
func (p *PortDecl) Span() source.Span { return p.Span_ }

// WireDecl declares one or more nets/variables, e.g. "wire [7:0] data;".
type WireDecl struct {
	Kind  Kind
	Width *Range
	Names []string
	Span_ source.Span
}

func (*WireDecl) item()              {}
func (w *WireDecl) Span() source.Span { return w.Span_ }

// Connection is a single port connection within an instantiation, either
// named (".port(expr)") or positional ("expr").
type Connection struct {
	PortName string // empty for positional connections
	Expr     Expr
	Span_    source.Span
}

// Instantiation instantiates ModuleType as InstanceName with a list of port
// connections.
type Instantiation struct {
	ModuleType   string
	InstanceName string
	Connections  []*Connection
	// ConnListEndSpan_ is the zero-length span immediately before the
	// closing ')' of the connection list — the insertion point for new
	// connections.
	ConnListEndSpan_ source.Span
	HasConnections   bool
	Span_            source.Span
}

func (*Instantiation) item()                 {}
func (i *Instantiation) Span() source.Span { return i.Span_ }

// Assign is a continuous assignment statement.  Its LHS and RHS are not
// retained as separate expression trees: the detector treats every
// hierarchical name appearing anywhere in the statement uniformly (per
// spec.md's default-to-read classification, since continuous assignment is
// not one of the recognised write-XMR forms), so only the flat set of
// HierName matches is kept.
type Assign struct {
	HierNames []*HierName
	Span_     source.Span
}

func (*Assign) item()              {}
func (a *Assign) Span() source.Span { return a.Span_ }

// AlwaysBlock is a procedural block; its body is retained only as the set of
// hierarchical-name expressions found within it (everything else is opaque
// text reproduced verbatim), since the detector/rewriter only need to find
// and replace such expressions, never to interpret procedural semantics.
type AlwaysBlock struct {
	HierNames []*HierName
	Span_     source.Span
}

func (*AlwaysBlock) item()              {}
func (a *AlwaysBlock) Span() source.Span { return a.Span_ }

// Expr is any expression appearing on the right (or left) of an assignment
// or as an instantiation's connection actual.
type Expr interface {
	Node
	expr()
}

// HierName is a (possibly) hierarchical name expression: a dotted chain of
// identifiers, the last of which names a signal and the rest of which name
// instances on the path from some starting point to that signal, the last
// optionally followed by one or more "[index]" suffixes.  A bare identifier
// with no dots (e.g. "r") is also represented as a HierName with a single
// segment; only multi-segment HierNames (or ones resolving through the
// absolute/self-reference rules) are candidate XMRs.
type HierName struct {
	// Segments are the dotted name components, outermost first; the last
	// segment is the referenced signal name.
	Segments []string
	// SegmentSpans holds the span of the corresponding Segments entry.
	SegmentSpans []source.Span
	// Indices holds, for the final segment only, the literal text of each
	// bracketed index suffix in order, e.g. ["[3]", "[2]"].
	Indices []string
	Span_   source.Span
}

func (*HierName) expr()              {}
func (h *HierName) Span() source.Span { return h.Span_ }

// BasePath returns the dotted path text without any trailing array-index
// suffix, e.g. "u_sub.data" for "u_sub.data[3]".
func (h *HierName) BasePath() string {
	s := h.Segments[0]
	for _, seg := range h.Segments[1:] {
		s += "." + seg
	}
	//
	return s
}

// ArraySuffix returns the concatenation of all bracketed index suffixes, in
// order, e.g. "[3][2]".
func (h *HierName) ArraySuffix() string {
	var s string
	for _, idx := range h.Indices {
		s += idx
	}
	//
	return s
}

