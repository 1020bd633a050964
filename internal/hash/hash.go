package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Buffer returns the hex SHA-256 of `b`
func Buffer(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
