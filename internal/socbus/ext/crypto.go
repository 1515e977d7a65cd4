package ext

import (
	"crypto/sha256"

	"github.com/intuitionamiga/socrt/internal/socbus"
)

// SHA256 reads length bytes at the cursor and returns the FIPS-180-4
// digest of the consumed range. crypto/sha256 is the idiomatic Go
// choice here: no third-party SHA-256 implementation appears anywhere
// in the retrieval pack, and it is the canonical source for this
// primitive in Go code (see DESIGN.md).
func SHA256(c *socbus.BusCursor, length int) ([32]byte, error) {
	raw, err := c.ReadBytes(length)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(raw), nil
}
