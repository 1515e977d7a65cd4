package isa

import (
	"fmt"
	"sort"
	"strings"
)

// DecodedInstruction is one matched instruction at a given address,
// together with the raw bytes consumed and its rendered display line.
type DecodedInstruction struct {
	Address  uint64
	Mnemonic string
	Bytes    []byte
	Operands map[string]uint64
	Display  string
}

// Disassembler matches fetched words against a MachineDescription's
// per-space mask/match table, the same narrowest-match-wins algorithm
// as the teacher's debug_disasm_z80.go and debug_disasm_6502.go opcode
// tables, generalized across a space's multiple declared word sizes
// (spec.md §4.6's PowerPC VLE example: 16- and 32-bit forms coexisting
// in one instruction stream) instead of being hardcoded to one CPU's
// fixed fetch width.
type Disassembler struct {
	md  *MachineDescription
	tab map[spaceWidth][]Instruction
}

type spaceWidth struct {
	space string
	bits  int
}

func NewDisassembler(md *MachineDescription) *Disassembler {
	d := &Disassembler{md: md, tab: make(map[spaceWidth][]Instruction)}
	for _, instr := range md.Instructions {
		key := spaceWidth{instr.Space, instr.WordBits}
		d.tab[key] = append(d.tab[key], instr)
	}
	for key, list := range d.tab {
		sort.SliceStable(list, func(i, j int) bool {
			return popcount(list[i].Mask.Mask) > popcount(list[j].Mask.Mask)
		})
		d.tab[key] = list
	}
	return d
}

func popcount(v uint64) int {
	n := 0
	for v != 0 {
		n++
		v &= v - 1
	}
	return n
}

// DecodeWord matches a fetched word (already masked to wordBits by the
// caller) against every instruction declared for space at that word
// size, most specific (widest) mask first, so the most specific form
// wins over a broader one that happens to also match.
func (d *Disassembler) DecodeWord(space string, wordBits int, word uint64) (Instruction, bool) {
	for _, instr := range d.tab[spaceWidth{space, wordBits}] {
		if word&instr.Mask.Mask == instr.Mask.Match {
			return instr, true
		}
	}
	return Instruction{}, false
}

// ExtractOperands pulls each matched instruction's operand values out
// of the raw word: a name naming one of the space's fields is read as
// an MSB-0 bit window sized against the instruction's word width; a
// name naming a declared parameter resolves to that parameter's
// (already-resolved) constant value.
func (d *Disassembler) ExtractOperands(instr Instruction, word uint64) (map[string]uint64, error) {
	space, ok := d.md.Spaces[instr.Space]
	if !ok {
		return nil, fmt.Errorf("isa: instruction %q references unknown space %q", instr.Mnemonic, instr.Space)
	}
	out := make(map[string]uint64, len(instr.Operands))
	for _, name := range instr.Operands {
		if f, ok := space.Fields[name]; ok {
			width := uint(f.Bits.End - f.Bits.Start)
			shift := uint(instr.WordBits) - uint(f.Bits.End)
			var mask uint64
			if width >= 64 {
				mask = ^uint64(0)
			} else {
				mask = (uint64(1) << width) - 1
			}
			out[name] = (word >> shift) & mask
			continue
		}
		if v, ok := d.md.Parameters[name]; ok {
			out[name] = uint64(v)
			continue
		}
		return nil, fmt.Errorf("isa: instruction %q references unknown operand %q", instr.Mnemonic, name)
	}
	return out, nil
}

// RenderDisplay substitutes each resolved operand into instr's
// `display "..."` template, replacing every `{name}` placeholder with
// the operand's hex value. An instruction with no display template
// renders as its bare mnemonic.
func RenderDisplay(instr Instruction, operands map[string]uint64) string {
	if instr.Display == "" {
		return instr.Mnemonic
	}
	out := instr.Display
	for name, v := range operands {
		out = strings.ReplaceAll(out, "{"+name+"}", fmt.Sprintf("%#x", v))
	}
	return out
}

// wordBytesFor reports how many whole bytes a word of bits wide
// consumes, and whether that count is available at offset in data.
func wordBytesFor(bits int, data []byte, offset int) (int, bool) {
	n := bits / 8
	if n == 0 || offset+n > len(data) {
		return n, false
	}
	return n, true
}

func decodeWordBytes(raw []byte, bigEndian bool) uint64 {
	var v uint64
	if bigEndian {
		for _, b := range raw {
			v = (v << 8) | uint64(b)
		}
	} else {
		for i := len(raw) - 1; i >= 0; i-- {
			v = (v << 8) | uint64(raw[i])
		}
	}
	return v
}

// Disassemble decodes a run of bytes in space starting at base,
// advancing through the stream word by word. At each position every
// one of the space's declared word sizes is tried, narrowest first,
// honoring the space's declared endianness; the first size whose word
// matches any declared instruction wins and the stream advances by
// that many bytes. A position where no declared size matches anything
// emits a `?` opcode and advances by the space's narrowest declared
// word size, so a stream with unrecognized encodings interleaved
// amongst valid ones (e.g. data embedded in code) stays
// disassembleable instead of aborting the whole run.
func (d *Disassembler) Disassemble(space string, data []byte, base uint64) ([]DecodedInstruction, error) {
	info, err := d.md.Lookup(space)
	if err != nil {
		return nil, err
	}
	sizes := append([]int(nil), info.WordSizes...)
	if len(sizes) == 0 {
		return nil, fmt.Errorf("isa: space %q declares no word sizes to disassemble", space)
	}
	sort.Ints(sizes)
	bigEndian := info.Endian != "little"

	var out []DecodedInstruction
	pos := 0
	for pos < len(data) {
		matched := false
		for _, bits := range sizes {
			n, ok := wordBytesFor(bits, data, pos)
			if !ok {
				continue
			}
			word := decodeWordBytes(data[pos:pos+n], bigEndian)
			instr, found := d.DecodeWord(space, bits, word)
			if !found {
				continue
			}
			operands, err := d.ExtractOperands(instr, word)
			if err != nil {
				return nil, err
			}
			out = append(out, DecodedInstruction{
				Address:  base + uint64(pos),
				Mnemonic: instr.Mnemonic,
				Bytes:    append([]byte(nil), data[pos:pos+n]...),
				Operands: operands,
				Display:  RenderDisplay(instr, operands),
			})
			pos += n
			matched = true
			break
		}
		if matched {
			continue
		}

		n := sizes[0] / 8
		if n == 0 {
			n = 1
		}
		if pos+n > len(data) {
			n = len(data) - pos
		}
		out = append(out, DecodedInstruction{
			Address:  base + uint64(pos),
			Mnemonic: "?",
			Bytes:    append([]byte(nil), data[pos:pos+n]...),
			Display:  "?",
		})
		pos += n
	}
	return out, nil
}
