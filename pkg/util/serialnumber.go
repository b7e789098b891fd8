package util

import (
	"crypto/rand"
	"math/big"
)

// Generates a random 128-bit x509 serial number. Uniqueness per
// issuer is the caller's responsibility.
func X509SerialNumber() (*big.Int, error) {
	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	return rand.Int(rand.Reader, serialNumberLimit)
}
