package rsagen

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {

	gen := New(nil)

	key, err := gen.GenerateKey(2048)
	assert.Nil(t, err)
	assert.NotNil(t, key)
	assert.Equal(t, 2048, key.N.BitLen())
	assert.Nil(t, key.Validate())
}

func TestGenerateDefaultLength(t *testing.T) {

	gen := New(nil)

	key, err := gen.GenerateDefault()
	assert.Nil(t, err)
	assert.Equal(t, DefaultKeyLength, key.N.BitLen())
}

func TestInvalidKeyLength(t *testing.T) {

	gen := New(nil)

	_, err := gen.GenerateKey(128)
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrInvalidKeyLength))

	// Lengths off the 64-bit grain are refused too
	_, err = gen.GenerateKey(2049)
	assert.True(t, errors.Is(err, ErrInvalidKeyLength))
}

func TestEntropySourceFailure(t *testing.T) {

	gen := New(errReader{})

	_, err := gen.GenerateKey(2048)
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrGeneration))
}

// A signature produced with the private half must verify
// under the paired public half.
func TestSignatureRoundTrip(t *testing.T) {

	gen := New(nil)

	key, err := gen.GenerateKey(2048)
	assert.Nil(t, err)

	digest := sha256.Sum256([]byte("signed material"))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	assert.Nil(t, err)

	err = rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest[:], signature)
	assert.Nil(t, err)
}

type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}
