package ext

import "github.com/intuitionamiga/socrt/internal/socbus"

// ReadULEB128 decodes an unsigned LEB128 value, bounded at 64
// significant bits, returning the value and the number of bytes
// consumed.
func ReadULEB128(c *socbus.BusCursor) (uint64, int, error) {
	start, err := c.GetPosition()
	if err != nil {
		return 0, 0, err
	}
	var result uint64
	var shift uint
	for {
		b, err := c.ReadU8()
		if err != nil {
			return 0, 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	end, err := c.GetPosition()
	if err != nil {
		return 0, 0, err
	}
	return result, int(end - start), nil
}

// ReadSLEB128 decodes a signed LEB128 value, sign-extending when the
// payload's sign bit is set and the accumulated shift is still below
// 64 bits.
func ReadSLEB128(c *socbus.BusCursor) (int64, int, error) {
	start, err := c.GetPosition()
	if err != nil {
		return 0, 0, err
	}
	var result int64
	var shift uint
	var b byte
	for {
		b, err = c.ReadU8()
		if err != nil {
			return 0, 0, err
		}
		result |= int64(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	end, err := c.GetPosition()
	if err != nil {
		return 0, 0, err
	}
	return result, int(end - start), nil
}
