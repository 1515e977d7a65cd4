// Package ext layers width-aware signed/float/LEB128/string/hex/hash
// decoders on top of socbus.BusCursor, the way the teacher's bus code
// layers small, single-purpose helpers on top of its MachineBus
// (machine_bus.go's Read8/16/32/64 family) rather than growing one
// monolithic cursor type.
package ext

import "github.com/intuitionamiga/socrt/internal/socbus"

// ReadI8 through ReadI64 sign-extend a width-aware unsigned read via
// ((v << (64-bits)) as i64) >> (64-bits), per SPEC_FULL.md §4.2.
func ReadI8(c *socbus.BusCursor) (int8, error) {
	v, err := c.ReadUnsigned(1)
	if err != nil {
		return 0, err
	}
	return int8(signExtend(v, 8)), nil
}

func ReadI16(c *socbus.BusCursor) (int16, error) {
	v, err := c.ReadUnsigned(2)
	if err != nil {
		return 0, err
	}
	return int16(signExtend(v, 16)), nil
}

func ReadI32(c *socbus.BusCursor) (int32, error) {
	v, err := c.ReadUnsigned(4)
	if err != nil {
		return 0, err
	}
	return int32(signExtend(v, 32)), nil
}

func ReadI64(c *socbus.BusCursor) (int64, error) {
	v, err := c.ReadUnsigned(8)
	if err != nil {
		return 0, err
	}
	return signExtend(v, 64), nil
}

// ReadSigned reads width bytes (1..=8) and sign-extends to int64.
func ReadSigned(c *socbus.BusCursor, width int) (int64, error) {
	v, err := c.ReadUnsigned(width)
	if err != nil {
		return 0, err
	}
	return signExtend(v, width*8), nil
}

func signExtend(v uint64, bits int) int64 {
	if bits >= 64 {
		return int64(v)
	}
	shift := uint(64 - bits)
	return int64(v<<shift) >> shift
}
