package isa

// IsaDocument is the parsed, unresolved form of a single .isa/.isaext
// source file: a flat list of top-level items in source order.
type IsaDocument struct {
	File  string
	Items []IsaItem
}

// IsaItem is the sum type of everything that can appear at the top
// level of a document.
type IsaItem struct {
	Kind    ItemKind
	Span    SourceSpan
	Include *IncludeDecl
	Space   *SpaceDecl
	Param   *ParameterDecl
	Instr   *InstructionDecl
}

type ItemKind int

const (
	ItemInclude ItemKind = iota
	ItemSpace
	ItemParameter
	ItemInstruction
)

// IncludeDecl references another source file by relative path.
// Optional includes (`?include`) are tolerated if the target is
// missing; required includes fail the whole document.
type IncludeDecl struct {
	Path     string
	Optional bool
	Span     SourceSpan
}

// SpaceKind distinguishes an addressable memory-like space from a
// register/logic space, per spec.md §6's `kind` production.
type SpaceKind int

const (
	SpaceMemory SpaceKind = iota
	SpaceLogic
)

func (k SpaceKind) String() string {
	if k == SpaceLogic {
		return "logic"
	}
	return "memory"
}

// SpaceDecl declares an addressable space: a kind, a bag of attributes
// (size, endian, one or more wordsizes, alignment), and its members
// (fields and nested instructions), per spec.md §6's
// `"space" ident ":" kind "{" { attr } { member } "}"`.
type SpaceDecl struct {
	Name         string
	Kind         SpaceKind
	SizeBits     int64
	Endian       string // "big" or "little"; "" if unspecified
	WordSizes    []int  // every declared `wordsize` attr, in source order
	AlignBits    int64
	Fields       []*FieldDecl
	Instructions []*InstructionDecl
	Span         SourceSpan
}

// RegisterRange records a field's `[start..end]` or `[start..=end]`
// array suffix. The validator keeps it on the field as parsed; it does
// not expand the range into per-register names.
type RegisterRange struct {
	Start     int64
	End       int64
	Inclusive bool
}

// BitSpec is the `@(start..end)` MSB-0 bit-window production.
type BitSpec struct {
	Start int64
	End   int64
}

// FieldDecl declares one named bit-window member of a space: an
// optional register-array suffix, the MSB-0 bitspec, and a trailing
// list of modifier idents (e.g. `ro`, `signed`).
type FieldDecl struct {
	Name  string
	Range *RegisterRange // nil for a scalar (non-array) field
	Bits  BitSpec
	Ops   []string
	Span  SourceSpan
}

// ParameterDecl declares a named constant alias, bound either to a
// literal number or to another parameter's name (declared anywhere),
// per spec.md §6's `"parameter" ident "=" value`.
type ParameterDecl struct {
	Name     string
	Literal  int64
	RefName  string // non-"" when the value is another parameter's name
	Span     SourceSpan
}

// MaskField is one `ident:width=value` entry of an instruction's mask
// block: a named bit-window fixed to a constant match value.
type MaskField struct {
	Name  string
	Width int
	Value uint64
}

// InstructionDecl declares one instruction form: its mnemonic, the
// space it decodes against, its ordered operand references, its fixed
// mask fields, a display template, and raw semantic-block source
// compiled lazily by SemanticProgram.
type InstructionDecl struct {
	Mnemonic  string
	Space     string
	Operands  []string
	Mask      []MaskField
	Display   string
	Semantics string // raw, un-parsed `semantics { ... }` body text
	Span      SourceSpan
}

// MaskSpec pairs a fixed-bit mask with the matching fixed-bit pattern,
// the mask/match pair the disassembler tests an instruction word
// against.
type MaskSpec struct {
	Mask  uint64
	Match uint64
}

// WordBits is the total bit width an instruction's mask fields cover:
// the sum of each named field's declared width. It is the coordinate
// an instruction is laid out against one of its space's declared
// `wordsize` candidates during validation.
func (d *InstructionDecl) WordBits() int {
	total := 0
	for _, f := range d.Mask {
		total += f.Width
	}
	return total
}

// ToMaskSpec packs an InstructionDecl's named mask fields into the
// single fixed mask/match word the disassembler tests a fetched word
// against. Fields are laid out contiguously MSB-first in declaration
// order within a word of wordBits bits, mirroring how a `mask { ... }`
// block reads top-to-bottom as the instruction's fixed encoding bits.
func (d *InstructionDecl) ToMaskSpec(wordBits int) MaskSpec {
	var spec MaskSpec
	used := 0
	for _, f := range d.Mask {
		width := uint(f.Width)
		var bits uint64
		if width >= 64 {
			bits = ^uint64(0)
		} else {
			bits = (uint64(1) << width) - 1
		}
		shift := uint(wordBits - used - f.Width)
		spec.Mask |= bits << shift
		spec.Match |= (f.Value & bits) << shift
		used += f.Width
	}
	return spec
}
