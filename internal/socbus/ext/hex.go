package ext

import (
	"fmt"
	"strings"

	"github.com/intuitionamiga/socrt/internal/socbus"
)

// ReadHex reads length bytes and renders them as uppercase hex pairs
// separated by single spaces, the format the teacher's disassembler
// uses for hex byte columns (see debug_disasm_z80.go's HexBytes
// field, grounding this helper).
func ReadHex(c *socbus.BusCursor, length int) (string, error) {
	raw, err := c.ReadBytes(length)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " "), nil
}

// ReadASCII reads length bytes and renders them with non-graphic
// bytes masked to '.'.
func ReadASCII(c *socbus.BusCursor, length int) (string, error) {
	raw, err := c.ReadBytes(length)
	if err != nil {
		return "", err
	}
	out := make([]byte, len(raw))
	for i, b := range raw {
		if b >= 0x20 && b < 0x7F {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out), nil
}
