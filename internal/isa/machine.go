package isa

import "fmt"

// SpaceInfo is a validated, fully-resolved SpaceDecl.
type SpaceInfo struct {
	Name      string
	Kind      SpaceKind
	SizeBits  int64
	Endian    string
	WordSizes []int
	AlignBits int64
	Fields    map[string]*FieldDecl
}

// Instruction is a validated InstructionDecl, bound to its resolved
// word size and packed mask/match pair so the disassembler doesn't
// need to re-walk the mask field list at decode time.
type Instruction struct {
	Mnemonic  string
	Space     string
	WordBits  int
	Mask      MaskSpec
	Operands  []string
	Display   string
	Semantics string
}

// MachineDescription is the validated, queryable form of an ISA
// document tree: its spaces, parameters and instructions, indexed for
// the disassembler and the semantic interpreter.
type MachineDescription struct {
	Spaces       map[string]SpaceInfo
	Parameters   map[string]int64
	Instructions []Instruction
}

// Validate walks the merged item list from LoadDocumentTree and builds
// a MachineDescription, recording every problem found rather than
// stopping at the first: unknown space references, mask/width-sum
// mismatches, duplicate declarations, and unresolved parameter chains.
func Validate(docs []*IsaDocument, diags *Diagnostics) *MachineDescription {
	md := &MachineDescription{
		Spaces:     make(map[string]SpaceInfo),
		Parameters: make(map[string]int64),
	}

	validateSpaces(docs, md, diags)
	validateParameters(docs, md, diags)
	validateInstructions(docs, md, diags)

	return md
}

func validateSpaces(docs []*IsaDocument, md *MachineDescription, diags *Diagnostics) {
	for _, doc := range docs {
		for _, item := range doc.Items {
			if item.Kind != ItemSpace {
				continue
			}
			s := item.Space
			if _, dup := md.Spaces[s.Name]; dup {
				diags.Errorf(PhaseValidate, item.Span, "duplicate space %q", s.Name)
				continue
			}
			if len(s.WordSizes) == 0 {
				diags.Warnf(PhaseValidate, item.Span, "space %q declares no wordsize; it cannot be disassembled", s.Name)
			}

			fields := make(map[string]*FieldDecl, len(s.Fields))
			for _, f := range s.Fields {
				if _, dup := fields[f.Name]; dup {
					diags.Errorf(PhaseValidate, f.Span, "duplicate field %q in space %q", f.Name, s.Name)
					continue
				}
				if f.Bits.Start < 0 || f.Bits.End <= f.Bits.Start {
					diags.Errorf(PhaseValidate, f.Span, "field %q has an empty or negative bitspec @(%d..%d)", f.Name, f.Bits.Start, f.Bits.End)
					continue
				}
				fields[f.Name] = f
			}

			md.Spaces[s.Name] = SpaceInfo{
				Name:      s.Name,
				Kind:      s.Kind,
				SizeBits:  s.SizeBits,
				Endian:    s.Endian,
				WordSizes: append([]int(nil), s.WordSizes...),
				AlignBits: s.AlignBits,
				Fields:    fields,
			}
		}
	}
}

func validateParameters(docs []*IsaDocument, md *MachineDescription, diags *Diagnostics) {
	pending := make(map[string]*ParameterDecl)
	for _, doc := range docs {
		for _, item := range doc.Items {
			if item.Kind != ItemParameter {
				continue
			}
			p := item.Param
			if _, dup := pending[p.Name]; dup {
				diags.Errorf(PhaseValidate, item.Span, "duplicate parameter %q", p.Name)
				continue
			}
			pending[p.Name] = p
		}
	}

	resolving := make(map[string]bool)
	var resolve func(name string, span SourceSpan) (int64, bool)
	resolve = func(name string, span SourceSpan) (int64, bool) {
		if v, ok := md.Parameters[name]; ok {
			return v, true
		}
		decl, ok := pending[name]
		if !ok {
			diags.Errorf(PhaseValidate, span, "parameter reference to unknown name %q", name)
			return 0, false
		}
		if resolving[name] {
			diags.Errorf(PhaseValidate, span, "parameter %q is defined in terms of itself", name)
			return 0, false
		}
		if decl.RefName == "" {
			md.Parameters[name] = decl.Literal
			return decl.Literal, true
		}
		resolving[name] = true
		v, ok := resolve(decl.RefName, decl.Span)
		resolving[name] = false
		if !ok {
			return 0, false
		}
		md.Parameters[name] = v
		return v, true
	}

	for name, decl := range pending {
		resolve(name, decl.Span)
	}
}

func validateInstructions(docs []*IsaDocument, md *MachineDescription, diags *Diagnostics) {
	var all []*InstructionDecl
	for _, doc := range docs {
		for _, item := range doc.Items {
			switch item.Kind {
			case ItemInstruction:
				all = append(all, item.Instr)
			case ItemSpace:
				all = append(all, item.Space.Instructions...)
			}
		}
	}

	for _, instr := range all {
		space, ok := md.Spaces[instr.Space]
		if !ok {
			diags.Errorf(PhaseValidate, instr.Span, "instruction %q references unknown space %q", instr.Mnemonic, instr.Space)
			continue
		}

		wordBits := instr.WordBits()
		if wordBits <= 0 {
			diags.Errorf(PhaseValidate, instr.Span, "instruction %q declares no mask fields", instr.Mnemonic)
			continue
		}
		if !containsWordSize(space.WordSizes, wordBits) {
			diags.Errorf(PhaseValidate, instr.Span, "instruction %q's mask fields sum to %d bits, not one of space %q's declared wordsizes %v", instr.Mnemonic, wordBits, instr.Space, space.WordSizes)
			continue
		}

		spec := instr.ToMaskSpec(wordBits)
		if spec.Mask == 0 {
			diags.Warnf(PhaseValidate, instr.Span, "instruction %q has an all-zero mask and matches every word", instr.Mnemonic)
		}
		if spec.Match&^spec.Mask != 0 {
			diags.Errorf(PhaseValidate, instr.Span, "instruction %q has match bits outside its mask", instr.Mnemonic)
			continue
		}

		for _, opName := range instr.Operands {
			if _, found := space.Fields[opName]; found {
				continue
			}
			if _, found := md.Parameters[opName]; found {
				continue
			}
			diags.Errorf(PhaseValidate, instr.Span, "instruction %q references unknown operand %q", instr.Mnemonic, opName)
		}

		md.Instructions = append(md.Instructions, Instruction{
			Mnemonic:  instr.Mnemonic,
			Space:     instr.Space,
			WordBits:  wordBits,
			Mask:      spec,
			Operands:  instr.Operands,
			Display:   instr.Display,
			Semantics: instr.Semantics,
		})
	}
}

func containsWordSize(sizes []int, n int) bool {
	for _, s := range sizes {
		if s == n {
			return true
		}
	}
	return false
}

// Lookup returns the space named n, if validated.
func (md *MachineDescription) Lookup(n string) (SpaceInfo, error) {
	s, ok := md.Spaces[n]
	if !ok {
		return SpaceInfo{}, fmt.Errorf("isa: unknown space %q", n)
	}
	return s, nil
}
