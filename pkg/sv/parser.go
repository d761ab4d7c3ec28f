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

import (
	"strconv"

	"github.com/opensv/xmreliminator/pkg/source"
)

// RawItem captures a module-body statement this frontend does not model
// structurally (e.g. an if/case inside a procedural block).  Only the
// hierarchical-name expressions within it are retained, since those are all
// the downstream passes need.
type RawItem struct {
	HierNames []*HierName
	Span_     source.Span
}

func (*RawItem) item()              {}
func (r *RawItem) Span() source.Span { return r.Span_ }

// Parser is a recursive-descent parser over the token stream produced by
// Lexer, building the syntax tree defined in ast.go.
type Parser struct {
	lex  *Lexer
	file *source.File
	tok  Token
	path string
}

// Parse parses a single source file into a *File, or returns the first
// syntax error encountered.
func Parse(path string, file *source.File) (*File, *source.SyntaxError) {
	p := &Parser{lex: NewLexer(file), file: file, path: path}
	p.advance()
	//
	var modules []*ModuleDecl
	//
	for p.tok.Kind != EOF {
		if p.tok.Kind != KW_MODULE {
			return nil, p.errorf("expected 'module'")
		}
		//
		m, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		//
		modules = append(modules, m)
	}
	//
	return &File{Path: path, Source: file, Modules: modules}, nil
}

func (p *Parser) advance() Token {
	cur := p.tok
	p.tok = p.lex.Next()
	//
	return cur
}

func (p *Parser) errorf(msg string) *source.SyntaxError {
	return p.file.SyntaxError(p.tok.Span, msg)
}

func (p *Parser) expect(kind Kind, what string) (Token, *source.SyntaxError) {
	if p.tok.Kind != kind {
		return Token{}, p.errorf("expected " + what)
	}
	//
	return p.advance(), nil
}

// ============================================================================
// Module
// ============================================================================

func (p *Parser) parseModule() (*ModuleDecl, *source.SyntaxError) {
	headerStart := p.tok.Span.Start()
	p.advance() // 'module'
	//
	name, err := p.expect(IDENT, "module name")
	if err != nil {
		return nil, err
	}
	//
	m := &ModuleDecl{Name: name}
	//
	if p.tok.Kind == HASH {
		// skip parameter port list "#( ... )"
		p.advance()
		if err := p.skipBalanced(LPAREN, RPAREN); err != nil {
			return nil, err
		}
	}
	//
	if p.tok.Kind == LPAREN {
		m.HasPortList = true
		//
		if err := p.parsePortList(m); err != nil {
			return nil, err
		}
	} else {
		m.PortListSpan_ = source.NewSpan(p.tok.Span.Start(), p.tok.Span.Start())
		m.PortListEndSpan_ = m.PortListSpan_
	}
	//
	semi, err := p.expect(SEMI, "';'")
	if err != nil {
		return nil, err
	}
	//
	m.HeaderSpan_ = source.NewSpan(headerStart, semi.Span.End())
	m.BodyStartSpan_ = source.NewSpan(semi.Span.End(), semi.Span.End())
	//
	for p.tok.Kind != KW_ENDMODULE {
		if p.tok.Kind == EOF {
			return nil, p.errorf("unexpected end-of-file inside module")
		}
		//
		item, err := p.parseItem(m)
		if err != nil {
			return nil, err
		}
		//
		if item != nil {
			m.Items = append(m.Items, item)
		}
	}
	//
	m.BodyEndSpan_ = source.NewSpan(p.tok.Span.Start(), p.tok.Span.Start())
	end := p.advance() // 'endmodule'
	m.EndSpan_ = end.Span
	//
	return m, nil
}

// parsePortList parses the header's "( ... )", determining whether it is an
// ANSI port list (entries carry their own direction) or a non-ANSI/bare list
// of names.
func (p *Parser) parsePortList(m *ModuleDecl) *source.SyntaxError {
	open := p.advance() // '('
	//
	if p.tok.Kind == RPAREN {
		m.PortListSpan_ = source.NewSpan(open.Span.Start(), p.tok.Span.End())
		m.PortListEndSpan_ = source.NewSpan(p.tok.Span.Start(), p.tok.Span.Start())
		p.advance()
		//
		return nil
	}
	// Peek to decide ANSI vs non-ANSI: an ANSI entry starts with a
	// direction keyword; a non-ANSI entry starts directly with a name
	// (optionally prefixed with '.' for .name(sig) style, not supported
	// here in a header position).
	m.ANSIPorts = p.tok.Kind.IsDirection()
	//
	var lastDir, lastKind Kind = KW_INPUT, KW_WIRE
	//
	for {
		if m.ANSIPorts {
			dir := lastDir
			kind := lastKind
			//
			if p.tok.Kind.IsDirection() {
				dir = p.tok.Kind
				p.advance()
			}
			//
			if p.tok.Kind.IsNetKind() {
				kind = p.tok.Kind
				p.advance()
			}
			//
			var width *Range
			//
			if p.tok.Kind == LBRACKET {
				r, err := p.parseRange()
				if err != nil {
					return err
				}
				//
				width = r
			}
			//
			nameTok, err := p.expect(IDENT, "port name")
			if err != nil {
				return err
			}
			//
			m.Ports = append(m.Ports, &PortDecl{
				Direction: dir,
				Kind:      kind,
				Width:     width,
				Names:     []string{nameTok.Text},
				Span_:     nameTok.Span,
			})
			lastDir, lastKind = dir, kind
		} else {
			nameTok, err := p.expect(IDENT, "port name")
			if err != nil {
				return err
			}
			//
			m.HeaderPortNames = append(m.HeaderPortNames, nameTok.Text)
		}
		//
		if p.tok.Kind == COMMA {
			p.advance()
			continue
		}
		//
		break
	}
	//
	if p.tok.Kind != RPAREN {
		return p.errorf("expected ',' or ')'")
	}
	//
	m.PortListEndSpan_ = source.NewSpan(p.tok.Span.Start(), p.tok.Span.Start())
	close := p.advance()
	m.PortListSpan_ = source.NewSpan(open.Span.Start(), close.Span.End())
	//
	return nil
}

func (p *Parser) parseRange() (*Range, *source.SyntaxError) {
	start := p.tok.Span.Start()
	p.advance() // '['
	//
	hi, err := p.parseConstExpr()
	if err != nil {
		return nil, err
	}
	//
	if _, err := p.expect(COLON, "':'"); err != nil {
		return nil, err
	}
	//
	lo, err := p.parseConstExpr()
	if err != nil {
		return nil, err
	}
	//
	end, err := p.expect(RBRACKET, "']'")
	if err != nil {
		return nil, err
	}
	//
	return &Range{Hi: hi, Lo: lo, Span_: source.NewSpan(start, end.Span.End())}, nil
}

func (p *Parser) parseConstExpr() (int, *source.SyntaxError) {
	tok, err := p.expect(NUMBER, "number")
	if err != nil {
		return 0, err
	}
	//
	v, cerr := strconv.Atoi(tok.Text)
	if cerr != nil {
		return 0, p.file.SyntaxError(tok.Span, "expected a plain decimal constant")
	}
	//
	return v, nil
}

// ============================================================================
// Body items
// ============================================================================

func (p *Parser) parseItem(m *ModuleDecl) (Item, *source.SyntaxError) {
	switch {
	case p.tok.Kind.IsDirection():
		return p.parsePortOrWireDecl(true)
	case p.tok.Kind.IsNetKind():
		return p.parsePortOrWireDecl(false)
	case p.tok.Kind == KW_ASSIGN:
		return p.parseAssign()
	case p.tok.Kind == KW_ALWAYS || p.tok.Kind == KW_ALWAYS_FF || p.tok.Kind == KW_ALWAYS_COMB:
		return p.parseAlways()
	case p.tok.Kind == KW_INITIAL:
		return p.parseInitial()
	case p.tok.Kind == IDENT:
		return p.parseInstantiationOrRaw()
	default:
		return p.parseRawStatement()
	}
}

func (p *Parser) parsePortOrWireDecl(isPort bool) (Item, *source.SyntaxError) {
	start := p.tok.Span.Start()
	//
	var dir Kind
	//
	if isPort {
		dir = p.tok.Kind
		p.advance()
	}
	//
	kind := KW_WIRE
	//
	if p.tok.Kind.IsNetKind() {
		kind = p.tok.Kind
		p.advance()
	}
	//
	var width *Range
	//
	if p.tok.Kind == LBRACKET {
		r, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		//
		width = r
	}
	//
	var names []string
	//
	for {
		nameTok, err := p.expect(IDENT, "signal name")
		if err != nil {
			return nil, err
		}
		//
		names = append(names, nameTok.Text)
		//
		if p.tok.Kind == COMMA {
			p.advance()
			continue
		}
		//
		break
	}
	//
	semi, err := p.expect(SEMI, "';'")
	if err != nil {
		return nil, err
	}
	//
	span := source.NewSpan(start, semi.Span.End())
	//
	if isPort {
		return &PortDecl{Direction: dir, Kind: kind, Width: width, Names: names, Span_: span}, nil
	}
	//
	return &WireDecl{Kind: kind, Width: width, Names: names, Span_: span}, nil
}

func (p *Parser) parseAssign() (Item, *source.SyntaxError) {
	start := p.tok.Span.Start()
	p.advance() // 'assign'
	//
	hns, _, err := p.parseExprUntil(SEMI)
	if err != nil {
		return nil, err
	}
	//
	semi, err := p.expect(SEMI, "';'")
	if err != nil {
		return nil, err
	}
	//
	return &Assign{HierNames: hns, Span_: source.NewSpan(start, semi.Span.End())}, nil
}

func (p *Parser) parseAlways() (Item, *source.SyntaxError) {
	start := p.tok.Span.Start()
	p.advance() // 'always'/'always_ff'/'always_comb'
	//
	var hns []*HierName
	//
	if p.tok.Kind == HASH {
		p.advance()
		if p.tok.Kind == NUMBER {
			p.advance()
		}
	}
	//
	if p.tok.Kind == OPERATOR && p.tok.Text == "@" {
		p.advance()
	}
	//
	if p.tok.Kind == LPAREN {
		inner, err := p.parseSensitivityList()
		if err != nil {
			return nil, err
		}
		//
		hns = append(hns, inner...)
	}
	//
	var bodySpan source.Span
	//
	if p.tok.Kind == KW_BEGIN {
		bodyHns, span, err := p.parseBeginEnd()
		if err != nil {
			return nil, err
		}
		//
		hns = append(hns, bodyHns...)
		bodySpan = span
	} else {
		bodyHns, span, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		//
		hns = append(hns, bodyHns...)
		bodySpan = span
	}
	//
	return &AlwaysBlock{HierNames: hns, Span_: source.NewSpan(start, bodySpan.End())}, nil
}

// parseInitial parses an "initial ... " block found in testbench-style
// modules.  It is modelled the same way as an always block: only the
// hierarchical names it contains are retained.
func (p *Parser) parseInitial() (Item, *source.SyntaxError) {
	start := p.tok.Span.Start()
	p.advance() // 'initial'
	//
	var hns []*HierName
	var bodySpan source.Span
	//
	if p.tok.Kind == KW_BEGIN {
		bodyHns, span, err := p.parseBeginEnd()
		if err != nil {
			return nil, err
		}
		//
		hns = append(hns, bodyHns...)
		bodySpan = span
	} else {
		bodyHns, span, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		//
		hns = append(hns, bodyHns...)
		bodySpan = span
	}
	//
	return &AlwaysBlock{HierNames: hns, Span_: source.NewSpan(start, bodySpan.End())}, nil
}

func (p *Parser) parseSensitivityList() ([]*HierName, *source.SyntaxError) {
	p.advance() // '('
	//
	var hns []*HierName
	//
	for p.tok.Kind != RPAREN {
		if p.tok.Kind == KW_POSEDGE || p.tok.Kind == KW_NEGEDGE {
			p.advance()
		}
		//
		if p.tok.Kind == IDENT && p.tok.Text == "or" {
			p.advance()
		} else if p.tok.Kind == IDENT {
			hn, err := p.parseHierName()
			if err != nil {
				return nil, err
			}
			//
			hns = append(hns, hn)
		} else {
			p.advance()
		}
	}
	//
	p.advance() // ')'
	//
	return hns, nil
}

// parseBeginEnd parses a "begin ... end" block, collecting any hierarchical
// names found in any nested assignment statements.  Nested control
// structures (if/case/for) are tolerated by scanning tokens for further
// "begin...end" nesting and statement terminators.
func (p *Parser) parseBeginEnd() ([]*HierName, source.Span, *source.SyntaxError) {
	start := p.advance().Span.Start() // 'begin'
	//
	var hns []*HierName
	//
	for p.tok.Kind != KW_END {
		if p.tok.Kind == EOF {
			return nil, source.Span{}, p.errorf("unexpected end-of-file inside begin/end block")
		}
		//
		if p.tok.Kind == KW_BEGIN {
			inner, _, err := p.parseBeginEnd()
			if err != nil {
				return nil, source.Span{}, err
			}
			//
			hns = append(hns, inner...)
			continue
		}
		//
		stmtHns, _, err := p.parseStatement()
		if err != nil {
			return nil, source.Span{}, err
		}
		//
		hns = append(hns, stmtHns...)
	}
	//
	end := p.advance() // 'end'
	//
	return hns, source.NewSpan(start, end.Span.End()), nil
}

// parseStatement consumes a single simple procedural statement up to and
// including its terminating ';' (or, for "if (...) stmt" forms, its nested
// statement too), collecting hierarchical names encountered anywhere in it.
func (p *Parser) parseStatement() ([]*HierName, source.Span, *source.SyntaxError) {
	start := p.tok.Span.Start()
	//
	if p.tok.Kind == KW_IF {
		p.advance()
		//
		var hns []*HierName
		//
		if p.tok.Kind == LPAREN {
			condHns, _, err := p.parseExprUntil(RPAREN)
			if err != nil {
				return nil, source.Span{}, err
			}
			//
			hns = append(hns, condHns...)
			p.advance() // consume ')'
		}
		//
		var branchSpan source.Span
		//
		if p.tok.Kind == KW_BEGIN {
			inner, span, err := p.parseBeginEnd()
			if err != nil {
				return nil, source.Span{}, err
			}
			//
			hns = append(hns, inner...)
			branchSpan = span
		} else {
			inner, span, err := p.parseStatement()
			if err != nil {
				return nil, source.Span{}, err
			}
			//
			hns = append(hns, inner...)
			branchSpan = span
		}
		//
		if p.tok.Kind == KW_ELSE {
			p.advance()
			//
			if p.tok.Kind == KW_BEGIN {
				inner, span, err := p.parseBeginEnd()
				if err != nil {
					return nil, source.Span{}, err
				}
				//
				hns = append(hns, inner...)
				branchSpan = span
			} else {
				inner, span, err := p.parseStatement()
				if err != nil {
					return nil, source.Span{}, err
				}
				//
				hns = append(hns, inner...)
				branchSpan = span
			}
		}
		//
		return hns, source.NewSpan(start, branchSpan.End()), nil
	}
	//
	hns, _, err := p.parseExprUntil(SEMI)
	if err != nil {
		return nil, source.Span{}, err
	}
	//
	semi := p.advance() // ';'
	//
	return hns, source.NewSpan(start, semi.Span.End()), nil
}

func (p *Parser) parseInstantiationOrRaw() (Item, *source.SyntaxError) {
	typeTok := p.advance() // module type name
	//
	nameTok, err := p.expect(IDENT, "instance name")
	if err != nil {
		return nil, err
	}
	//
	if p.tok.Kind != LPAREN {
		return nil, p.errorf("expected '(' in instantiation")
	}
	//
	inst := &Instantiation{ModuleType: typeTok.Text, InstanceName: nameTok.Text}
	//
	p.advance() // '('
	//
	if p.tok.Kind != RPAREN {
		inst.HasConnections = true
		//
		for {
			conn, err := p.parseConnection()
			if err != nil {
				return nil, err
			}
			//
			inst.Connections = append(inst.Connections, conn)
			//
			if p.tok.Kind == COMMA {
				p.advance()
				continue
			}
			//
			break
		}
	}
	//
	if p.tok.Kind != RPAREN {
		return nil, p.errorf("expected ')' in instantiation")
	}
	//
	inst.ConnListEndSpan_ = source.NewSpan(p.tok.Span.Start(), p.tok.Span.Start())
	p.advance() // ')'
	//
	semi, err := p.expect(SEMI, "';'")
	if err != nil {
		return nil, err
	}
	//
	inst.Span_ = source.NewSpan(typeTok.Span.Start(), semi.Span.End())
	//
	return inst, nil
}

func (p *Parser) parseConnection() (*Connection, *source.SyntaxError) {
	start := p.tok.Span.Start()
	//
	if p.tok.Kind == DOT {
		p.advance()
		//
		nameTok, err := p.expect(IDENT, "port name")
		if err != nil {
			return nil, err
		}
		//
		if _, err := p.expect(LPAREN, "'('"); err != nil {
			return nil, err
		}
		//
		hn, err := p.parseOptionalConnExpr()
		if err != nil {
			return nil, err
		}
		//
		closeTok, err := p.expect(RPAREN, "')'")
		if err != nil {
			return nil, err
		}
		//
		return &Connection{PortName: nameTok.Text, Expr: hn, Span_: source.NewSpan(start, closeTok.Span.End())}, nil
	}
	// positional connection: a bare expression
	hns, end, err := p.parseExprUntilAny(COMMA, RPAREN)
	if err != nil {
		return nil, err
	}
	//
	var hn Expr
	//
	if len(hns) == 1 {
		hn = hns[0]
	}
	//
	return &Connection{Expr: hn, Span_: source.NewSpan(start, end.End())}, nil
}

func (p *Parser) parseOptionalConnExpr() (Expr, *source.SyntaxError) {
	if p.tok.Kind == RPAREN {
		return nil, nil
	}
	//
	hns, _, err := p.parseExprUntil(RPAREN)
	if err != nil {
		return nil, err
	}
	//
	if len(hns) == 1 {
		return hns[0], nil
	}
	//
	return nil, nil
}

func (p *Parser) parseRawStatement() (Item, *source.SyntaxError) {
	start := p.tok.Span.Start()
	hns, _, err := p.parseExprUntil(SEMI)
	if err != nil {
		return nil, err
	}
	//
	semi, err := p.expect(SEMI, "';'")
	if err != nil {
		return nil, err
	}
	//
	return &RawItem{HierNames: hns, Span_: source.NewSpan(start, semi.Span.End())}, nil
}

// ============================================================================
// Expressions: scan for hierarchical-name occurrences, treating everything
// else as opaque token noise (operators, literals, parens, commas within a
// concatenation, call arguments, etc).
// ============================================================================

func (p *Parser) parseExprUntil(stop Kind) ([]*HierName, source.Span, *source.SyntaxError) {
	return p.parseExprUntilAny(stop)
}

func (p *Parser) parseExprUntilAny(stops ...Kind) ([]*HierName, source.Span, *source.SyntaxError) {
	var hns []*HierName
	//
	start := p.tok.Span.Start()
	last := start
	depth := 0
	//
	for {
		if depth == 0 && containsKind(stops, p.tok.Kind) {
			break
		}
		//
		if p.tok.Kind == EOF {
			return nil, source.Span{}, p.errorf("unexpected end-of-file in expression")
		}
		//
		switch p.tok.Kind {
		case LPAREN, LBRACKET, LBRACE:
			depth++
			last = p.advance().Span.End()
		case RPAREN, RBRACKET, RBRACE:
			depth--
			last = p.advance().Span.End()
		case IDENT:
			hn, err := p.parseHierName()
			if err != nil {
				return nil, source.Span{}, err
			}
			//
			hns = append(hns, hn)
			last = hn.Span_.End()
		default:
			last = p.advance().Span.End()
		}
	}
	//
	return hns, source.NewSpan(start, last), nil
}

func containsKind(ks []Kind, k Kind) bool {
	for _, x := range ks {
		if x == k {
			return true
		}
	}
	//
	return false
}

// parseHierName parses a dotted identifier chain, e.g. "u_mid.u_bottom.sig",
// with optional trailing "[idx]" suffixes on the final segment.
func (p *Parser) parseHierName() (*HierName, *source.SyntaxError) {
	first := p.advance() // IDENT already checked by caller
	//
	hn := &HierName{
		Segments:     []string{first.Text},
		SegmentSpans: []source.Span{first.Span},
	}
	//
	for p.tok.Kind == DOT {
		p.advance()
		//
		seg, err := p.expect(IDENT, "identifier after '.'")
		if err != nil {
			return nil, err
		}
		//
		hn.Segments = append(hn.Segments, seg.Text)
		hn.SegmentSpans = append(hn.SegmentSpans, seg.Span)
	}
	//
	end := hn.SegmentSpans[len(hn.SegmentSpans)-1].End()
	//
	for p.tok.Kind == LBRACKET {
		idxStart := p.tok.Span.Start()
		p.advance()
		depth := 1
		//
		for depth > 0 {
			switch p.tok.Kind {
			case LBRACKET:
				depth++
			case RBRACKET:
				depth--
			case EOF:
				return nil, p.errorf("unterminated array index")
			}
			//
			p.advance()
		}
		//
		end = p.tokPrevEnd()
		hn.Indices = append(hn.Indices, string(p.file.Contents()[idxStart:end]))
	}
	//
	hn.Span_ = source.NewSpan(first.Span.Start(), end)
	//
	return hn, nil
}

// tokPrevEnd returns the end offset of the token just consumed (i.e. the
// start of the current lookahead token's preceding trivia is not tracked, so
// this approximates using the lexer's current index, which sits exactly
// where the previous token ended plus any skipped trivia before p.tok).
func (p *Parser) tokPrevEnd() int {
	// The lookahead token p.tok has already been scanned; the last
	// consumed ']' ended exactly at the start of whatever trivia precedes
	// p.tok. Since Lexer does not expose that boundary directly, we
	// recompute it as the start of p.tok's span minus any interleaving
	// trivia, which for array-index purposes is safe to approximate as
	// the start of p.tok when back-to-back, else fall back to scanning
	// backwards from p.tok.Span.Start() for the last ']'.
	contents := p.file.Contents()
	i := p.tok.Span.Start() - 1
	//
	for i >= 0 && (contents[i] == ' ' || contents[i] == '\t' || contents[i] == '\n' || contents[i] == '\r') {
		i--
	}
	//
	return i + 1
}

// skipBalanced consumes tokens from an opening delimiter to its matching
// closing delimiter, inclusive, discarding everything in between (used for
// parameter port lists which are irrelevant to XMR elimination).
func (p *Parser) skipBalanced(open, close Kind) *source.SyntaxError {
	if p.tok.Kind != open {
		return p.errorf("expected opening delimiter")
	}
	//
	depth := 0
	//
	for {
		if p.tok.Kind == open {
			depth++
		} else if p.tok.Kind == close {
			depth--
		} else if p.tok.Kind == EOF {
			return p.errorf("unexpected end-of-file")
		}
		//
		p.advance()
		//
		if depth == 0 {
			break
		}
	}
	//
	return nil
}
