package isa

import (
	"path/filepath"
	"strings"
)

// FileLoader returns the source text of path. LoadDocumentTree resolves
// a relative include path against the directory of the including file
// before calling it. Implementations typically wrap os.ReadFile.
type FileLoader func(path string) (string, error)

// Parser turns one source file's Lexeme stream into an IsaDocument,
// reporting problems into a shared Diagnostics sink instead of
// aborting on the first error, the way the teacher's assembler front
// end collects every line's problems before giving up.
type Parser struct {
	file  string
	lex   *Lexer
	cur   Lexeme
	diags *Diagnostics
}

func NewParser(file, src string, diags *Diagnostics) *Parser {
	p := &Parser{file: file, lex: NewLexer(file, src), diags: diags}
	p.cur = p.lex.Next()
	return p
}

func (p *Parser) advance() Lexeme {
	prev := p.cur
	p.cur = p.lex.Next()
	return prev
}

func (p *Parser) expect(tok Token) (Lexeme, bool) {
	if p.cur.Token != tok {
		p.diags.Errorf(PhaseParse, p.cur.Span, "expected %s, found %s %q", tok, p.cur.Token, p.cur.Text)
		return p.cur, false
	}
	return p.advance(), true
}

func (p *Parser) expectNumber() (int64, SourceSpan, bool) {
	lit, ok := p.expect(Number)
	if !ok {
		return 0, lit.Span, false
	}
	v, err := ParseIntLiteral(lit.Text)
	if err != nil {
		p.diags.Errorf(PhaseParse, lit.Span, "%v", err)
		return 0, lit.Span, false
	}
	return v, lit.Span, true
}

// ParseDocument parses the whole token stream into an IsaDocument.
// Parse errors are recorded but do not stop the scan; the parser skips
// to the next recognizable item start so later errors are still found.
func (p *Parser) ParseDocument() *IsaDocument {
	doc := &IsaDocument{File: p.file}
	for p.cur.Token != EndOfFile {
		item, ok := p.parseItem()
		if ok {
			doc.Items = append(doc.Items, item)
		} else {
			p.skipToNextItem()
		}
	}
	return doc
}

func (p *Parser) skipToNextItem() {
	for p.cur.Token != EndOfFile {
		switch p.cur.Token {
		case KeywordSpace, KeywordParameter, KeywordInstruction, KeywordInclude, Question:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseItem() (IsaItem, bool) {
	switch p.cur.Token {
	case Question:
		return p.parseOptionalInclude()
	case KeywordInclude:
		return p.parseInclude(false)
	case KeywordSpace:
		return p.parseSpace()
	case KeywordParameter:
		return p.parseParameter()
	case KeywordInstruction:
		return p.parseInstruction("")
	default:
		p.diags.Errorf(PhaseParse, p.cur.Span, "unexpected token %s %q at top level", p.cur.Token, p.cur.Text)
		return IsaItem{}, false
	}
}

func (p *Parser) parseOptionalInclude() (IsaItem, bool) {
	start := p.cur.Span
	p.advance() // '?'
	if p.cur.Token != KeywordInclude {
		p.diags.Errorf(PhaseParse, start, "expected 'include' after '?'")
		return IsaItem{}, false
	}
	item, ok := p.parseInclude(true)
	item.Span.Start = start.Start
	return item, ok
}

func (p *Parser) parseInclude(optional bool) (IsaItem, bool) {
	start := p.cur.Span
	p.advance() // 'include'
	lit, ok := p.expect(String)
	if !ok {
		return IsaItem{}, false
	}
	if p.cur.Token == Semicolon {
		p.advance()
	}
	decl := &IncludeDecl{Path: lit.Text, Optional: optional, Span: SourceSpan{Start: start.Start, End: lit.Span.End}}
	return IsaItem{Kind: ItemInclude, Span: decl.Span, Include: decl}, true
}

// parseParameter implements `"parameter" ident "=" value ";"`, where
// value is either a numeric literal or a reference to another
// parameter's name, resolved at validation time.
func (p *Parser) parseParameter() (IsaItem, bool) {
	start := p.cur.Span
	p.advance() // 'parameter'
	name, ok := p.expect(Identifier)
	if !ok {
		return IsaItem{}, false
	}
	if _, ok := p.expect(Equals); !ok {
		return IsaItem{}, false
	}

	decl := &ParameterDecl{Name: name.Text}
	switch p.cur.Token {
	case Number:
		v, _, ok := p.expectNumber()
		if !ok {
			return IsaItem{}, false
		}
		decl.Literal = v
	case Identifier:
		decl.RefName = p.cur.Text
		p.advance()
	default:
		p.diags.Errorf(PhaseParse, p.cur.Span, "expected number or identifier, found %s %q", p.cur.Token, p.cur.Text)
		return IsaItem{}, false
	}
	if _, ok := p.expect(Semicolon); !ok {
		return IsaItem{}, false
	}
	decl.Span = SourceSpan{Start: start.Start, End: p.cur.Span.Start}
	return IsaItem{Kind: ItemParameter, Span: decl.Span, Param: decl}, true
}

// parseSpace implements `"space" ident ":" kind "{" { attr } { member } "}"`.
func (p *Parser) parseSpace() (IsaItem, bool) {
	start := p.cur.Span
	p.advance() // 'space'
	name, ok := p.expect(Identifier)
	if !ok {
		return IsaItem{}, false
	}
	if _, ok := p.expect(Colon); !ok {
		return IsaItem{}, false
	}

	var kind SpaceKind
	switch {
	case p.cur.Token == Identifier && p.cur.Text == "memory":
		kind = SpaceMemory
		p.advance()
	case p.cur.Token == Identifier && p.cur.Text == "logic":
		kind = SpaceLogic
		p.advance()
	default:
		p.diags.Errorf(PhaseParse, p.cur.Span, "expected space kind 'memory' or 'logic', found %s %q", p.cur.Token, p.cur.Text)
		return IsaItem{}, false
	}

	if _, ok := p.expect(LBrace); !ok {
		return IsaItem{}, false
	}

	decl := &SpaceDecl{Name: name.Text, Kind: kind}

attrs:
	for {
		switch p.cur.Token {
		case KeywordSize:
			p.advance()
			if _, ok := p.expect(Equals); !ok {
				return IsaItem{}, false
			}
			v, _, ok := p.expectNumber()
			if !ok {
				return IsaItem{}, false
			}
			decl.SizeBits = v
		case KeywordEndian:
			p.advance()
			if _, ok := p.expect(Equals); !ok {
				return IsaItem{}, false
			}
			if p.cur.Token != Identifier || (p.cur.Text != "big" && p.cur.Text != "little") {
				p.diags.Errorf(PhaseParse, p.cur.Span, "expected 'big' or 'little', found %s %q", p.cur.Token, p.cur.Text)
				return IsaItem{}, false
			}
			decl.Endian = p.cur.Text
			p.advance()
		case KeywordWordsize:
			p.advance()
			if _, ok := p.expect(Equals); !ok {
				return IsaItem{}, false
			}
			v, _, ok := p.expectNumber()
			if !ok {
				return IsaItem{}, false
			}
			decl.WordSizes = append(decl.WordSizes, int(v))
		case KeywordAlign:
			p.advance()
			if _, ok := p.expect(Equals); !ok {
				return IsaItem{}, false
			}
			v, _, ok := p.expectNumber()
			if !ok {
				return IsaItem{}, false
			}
			decl.AlignBits = v
		default:
			break attrs
		}
		if _, ok := p.expect(Semicolon); !ok {
			return IsaItem{}, false
		}
	}

	for p.cur.Token != RBrace && p.cur.Token != EndOfFile {
		if p.cur.Token == KeywordInstruction {
			item, ok := p.parseInstruction(decl.Name)
			if !ok {
				return IsaItem{}, false
			}
			decl.Instructions = append(decl.Instructions, item.Instr)
			continue
		}
		field, ok := p.parseField()
		if !ok {
			return IsaItem{}, false
		}
		decl.Fields = append(decl.Fields, field)
	}
	if _, ok := p.expect(RBrace); !ok {
		return IsaItem{}, false
	}

	decl.Span = SourceSpan{Start: start.Start, End: p.cur.Span.Start}
	return IsaItem{Kind: ItemSpace, Span: decl.Span, Space: decl}, true
}

// parseField implements `field := ident [ "[" range "]" ] bitspec { ops } ";"`.
func (p *Parser) parseField() (*FieldDecl, bool) {
	start := p.cur.Span
	name, ok := p.expect(Identifier)
	if !ok {
		return nil, false
	}
	field := &FieldDecl{Name: name.Text}

	if p.cur.Token == LBracket {
		p.advance()
		lo, _, ok := p.expectNumber()
		if !ok {
			return nil, false
		}
		inclusive := false
		switch p.cur.Token {
		case DotDot:
			p.advance()
		case DotDotEq:
			inclusive = true
			p.advance()
		default:
			p.diags.Errorf(PhaseParse, p.cur.Span, "expected '..' or '..=' in register range, found %s %q", p.cur.Token, p.cur.Text)
			return nil, false
		}
		hi, _, ok := p.expectNumber()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(RBracket); !ok {
			return nil, false
		}
		field.Range = &RegisterRange{Start: lo, End: hi, Inclusive: inclusive}
	}

	if _, ok := p.expect(At); !ok {
		return nil, false
	}
	if _, ok := p.expect(LParen); !ok {
		return nil, false
	}
	lo, _, ok := p.expectNumber()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(DotDot); !ok {
		return nil, false
	}
	hi, _, ok := p.expectNumber()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(RParen); !ok {
		return nil, false
	}
	field.Bits = BitSpec{Start: lo, End: hi}

	for p.cur.Token == Identifier {
		field.Ops = append(field.Ops, p.cur.Text)
		p.advance()
	}
	if _, ok := p.expect(Semicolon); !ok {
		return nil, false
	}
	field.Span = SourceSpan{Start: start.Start, End: p.cur.Span.Start}
	return field, true
}

// parseInstruction implements
// `"instruction" ident "@" ident [ "(" operands ")" ] "{" ibody "}"`.
// enclosingSpace is the name of the space this instruction was parsed
// as a member of, "" at top level.
func (p *Parser) parseInstruction(enclosingSpace string) (IsaItem, bool) {
	start := p.cur.Span
	p.advance() // 'instruction'
	mnemonic, ok := p.expect(Identifier)
	if !ok {
		return IsaItem{}, false
	}
	if _, ok := p.expect(At); !ok {
		return IsaItem{}, false
	}
	spaceRef, ok := p.expect(Identifier)
	if !ok {
		return IsaItem{}, false
	}

	var operands []string
	if p.cur.Token == LParen {
		p.advance()
		for p.cur.Token != RParen && p.cur.Token != EndOfFile {
			op, ok := p.expect(Identifier)
			if !ok {
				return IsaItem{}, false
			}
			operands = append(operands, op.Text)
			if p.cur.Token == Comma {
				p.advance()
			}
		}
		if _, ok := p.expect(RParen); !ok {
			return IsaItem{}, false
		}
	}

	if _, ok := p.expect(LBrace); !ok {
		return IsaItem{}, false
	}

	decl := &InstructionDecl{
		Mnemonic: mnemonic.Text,
		Space:    spaceRef.Text,
		Operands: operands,
	}
	if enclosingSpace != "" {
		decl.Space = enclosingSpace
	}

	for p.cur.Token != RBrace && p.cur.Token != EndOfFile {
		switch p.cur.Token {
		case KeywordMask:
			if !p.parseMaskBlock(decl) {
				return IsaItem{}, false
			}
		case KeywordDisplay:
			p.advance()
			lit, ok := p.expect(String)
			if !ok {
				return IsaItem{}, false
			}
			decl.Display = lit.Text
			if p.cur.Token == Semicolon {
				p.advance()
			}
		case KeywordSemantics:
			p.advance()
			src, ok := p.parseSemanticsBlock()
			if !ok {
				return IsaItem{}, false
			}
			decl.Semantics = src
		default:
			p.diags.Errorf(PhaseParse, p.cur.Span, "unexpected token %s %q in instruction body", p.cur.Token, p.cur.Text)
			return IsaItem{}, false
		}
	}
	if _, ok := p.expect(RBrace); !ok {
		return IsaItem{}, false
	}

	decl.Span = SourceSpan{Start: start.Start, End: p.cur.Span.Start}
	return IsaItem{Kind: ItemInstruction, Span: decl.Span, Instr: decl}, true
}

// parseMaskBlock implements `mask := "mask" "{" { ident ":" NUMBER "=" NUMBER } "}"`.
// Each entry may be followed by an optional ',' or ';'.
func (p *Parser) parseMaskBlock(decl *InstructionDecl) bool {
	p.advance() // 'mask'
	if _, ok := p.expect(LBrace); !ok {
		return false
	}
	for p.cur.Token != RBrace && p.cur.Token != EndOfFile {
		name, ok := p.expect(Identifier)
		if !ok {
			return false
		}
		if _, ok := p.expect(Colon); !ok {
			return false
		}
		width, _, ok := p.expectNumber()
		if !ok {
			return false
		}
		if _, ok := p.expect(Equals); !ok {
			return false
		}
		value, _, ok := p.expectNumber()
		if !ok {
			return false
		}
		decl.Mask = append(decl.Mask, MaskField{Name: name.Text, Width: int(width), Value: uint64(value)})
		if p.cur.Token == Comma || p.cur.Token == Semicolon {
			p.advance()
		}
	}
	_, ok := p.expect(RBrace)
	return ok
}

// parseSemanticsBlock captures a `semantics { ... }` body's raw source
// text verbatim between the braces (balanced against further nested
// braces), leaving compilation of that text into a SemanticExpr tree
// to SemanticProgram's lazy build step rather than this parse pass.
func (p *Parser) parseSemanticsBlock() (string, bool) {
	open, ok := p.expect(LBrace)
	if !ok {
		return "", false
	}
	startOffset := open.Span.End.Offset
	depth := 1
	for {
		switch p.cur.Token {
		case EndOfFile:
			p.diags.Errorf(PhaseParse, p.cur.Span, "unterminated semantics block")
			return "", false
		case LBrace:
			depth++
		case RBrace:
			depth--
			if depth == 0 {
				endOffset := p.cur.Span.Start.Offset
				raw := strings.TrimSpace(p.lex.src[startOffset:endOffset])
				p.advance() // consume closing '}'
				return raw, true
			}
		}
		p.advance()
	}
}

// LoadDocumentTree parses file and every (transitively) included file
// reachable from it, returning documents in a post-order suitable for
// building a MachineDescription (dependencies before dependents).
// Cycles are detected and reported rather than causing infinite
// recursion, the way the teacher's asset loader guards against
// self-referential resource chains.
func LoadDocumentTree(file string, load FileLoader, diags *Diagnostics) []*IsaDocument {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	var order []*IsaDocument

	var visit func(path string, optional bool, refSpan SourceSpan)
	visit = func(path string, optional bool, refSpan SourceSpan) {
		clean := filepath.Clean(path)
		if visiting[clean] {
			diags.Errorf(PhaseInclude, refSpan, "include cycle detected at %q", path)
			return
		}
		if visited[clean] {
			return
		}
		src, err := load(clean)
		if err != nil {
			if optional {
				return
			}
			diags.Errorf(PhaseInclude, refSpan, "cannot load include %q: %v", path, err)
			return
		}
		visiting[clean] = true
		parser := NewParser(clean, src, diags)
		doc := parser.ParseDocument()
		for _, item := range doc.Items {
			if item.Kind == ItemInclude {
				incPath := item.Include.Path
				if !filepath.IsAbs(incPath) {
					incPath = filepath.Join(filepath.Dir(clean), incPath)
				}
				visit(incPath, item.Include.Optional, item.Include.Span)
			}
		}
		visiting[clean] = false
		visited[clean] = true
		order = append(order, doc)
	}

	visit(file, false, SourceSpan{})
	return order
}
