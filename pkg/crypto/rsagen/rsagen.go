package rsagen

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
)

// The key length used when no explicit length is requested
const DefaultKeyLength = 4096

// The smallest key length accepted by the generator. Anything
// shorter is refused rather than generated weak.
const MinKeyLength = 512

var (
	ErrGeneration       = errors.New("crypto/rsagen: key pair generation failed")
	ErrInvalidKeyLength = errors.New("crypto/rsagen: unsupported key length")
)

type RSAGen struct {
	random io.Reader
}

// RSA key pair generator. Accepts an optional source of entropy,
// allowing a deterministic reader to be substituted in tests. A nil
// reader falls back to the platform random source.
func New(random io.Reader) RSAGen {
	if random == nil {
		random = rand.Reader
	}
	return RSAGen{
		random: random,
	}
}

// Generates a new RSA key pair of the default 4096 bit length
func (gen RSAGen) GenerateDefault() (*rsa.PrivateKey, error) {
	return gen.GenerateKey(DefaultKeyLength)
}

// Generates a new RSA key pair of the requested length. The length
// must be a multiple of 64 bits. The private key carries the public
// half; both are ephemeral and owned by the caller. No retries are
// performed, entropy source failures surface immediately.
func (gen RSAGen) GenerateKey(bits int) (*rsa.PrivateKey, error) {
	if bits < MinKeyLength || bits%64 != 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrInvalidKeyLength, bits)
	}
	key, err := rsa.GenerateKey(gen.random, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return key, nil
}
