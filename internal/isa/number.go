package isa

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntLiteral parses a Number lexeme's text, stripping '_'
// separators and dispatching on the 0x/0b/0o radix prefix the way the
// lexer recognizes them.
func ParseIntLiteral(text string) (int64, error) {
	clean := strings.ReplaceAll(text, "_", "")
	if len(clean) == 0 {
		return 0, fmt.Errorf("isa: empty numeric literal")
	}

	neg := false
	if strings.HasPrefix(clean, "-") {
		neg = true
		clean = clean[1:]
	}

	var v uint64
	var err error
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		v, err = strconv.ParseUint(clean[2:], 16, 64)
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		v, err = strconv.ParseUint(clean[2:], 2, 64)
	case strings.HasPrefix(clean, "0o") || strings.HasPrefix(clean, "0O"):
		v, err = strconv.ParseUint(clean[2:], 8, 64)
	default:
		v, err = strconv.ParseUint(clean, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("isa: invalid numeric literal %q: %w", text, err)
	}
	result := int64(v)
	if neg {
		result = -result
	}
	return result, nil
}
