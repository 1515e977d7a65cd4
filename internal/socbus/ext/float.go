package ext

import (
	"math"

	"github.com/intuitionamiga/socrt/internal/socbus"
)

// ReadF32 reads a 4-byte IEEE-754 float honoring device endianness.
func ReadF32(c *socbus.BusCursor) (float32, error) {
	bits, err := c.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadF64 reads an 8-byte IEEE-754 double honoring device endianness.
func ReadF64(c *socbus.BusCursor) (float64, error) {
	bits, err := c.ReadU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}
