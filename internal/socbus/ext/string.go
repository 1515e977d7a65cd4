package ext

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/intuitionamiga/socrt/internal/socbus"
)

// ReadUTF8 reads a fixed-length string, trimming at the first NUL
// byte and lossily decoding any invalid UTF-8.
func ReadUTF8(c *socbus.BusCursor, length int) (string, error) {
	raw, err := c.ReadBytes(length)
	if err != nil {
		return "", err
	}
	if idx := bytes.IndexByte(raw, 0); idx >= 0 {
		raw = raw[:idx]
	}
	return toValidUTF8(raw), nil
}

// ReadCString reads until a terminating NUL or maxLen bytes have been
// consumed, whichever comes first.
func ReadCString(c *socbus.BusCursor, maxLen int) (string, error) {
	buf := make([]byte, 0, maxLen)
	for i := 0; i < maxLen; i++ {
		b, err := c.ReadU8()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return toValidUTF8(buf), nil
}

func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
