package credstore

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Bundle holds the credentials backing one TLS context: a keystore
// with the identity key and certificate, a truststore with the
// trust anchors, and the passphrase sealing the keystore key. The
// passphrase is generated fresh for every bundle and never derived
// from the inputs; the bundle is meant to live only as long as the
// TLS context built from it.
type Bundle struct {
	KeyStore   *Store
	TrustStore *Store
	Passphrase string
}

// Assembles a credential bundle from PEM streams: the identity
// certificate, its private key, and the CA certificate(s) to trust.
// The identity entry is stored under the "Private Key" alias and
// trust anchors under "CA Certificate-<index>" aliases. Each call
// yields an independent bundle with its own passphrase.
func Assemble(certPEM, keyPEM, caCertPEM io.Reader) (*Bundle, error) {

	truststore := New()
	if err := truststore.SetCertificatesFrom(AliasCACertificate, caCertPEM); err != nil {
		return nil, err
	}

	passphrase, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("%w: passphrase generation failed: %v", ErrValidation, err)
	}

	keystore := New()
	if err := keystore.SetPrivateKeyFrom(
		AliasPrivateKey, keyPEM, passphrase.String(), certPEM); err != nil {
		return nil, err
	}

	return &Bundle{
		KeyStore:   keystore,
		TrustStore: truststore,
		Passphrase: passphrase.String(),
	}, nil
}

// Returns the bundle's identity certificate
func (b *Bundle) Certificate() (*x509.Certificate, error) {
	return b.KeyStore.Certificate(AliasPrivateKey)
}

// Unseals and returns the bundle's identity private key
func (b *Bundle) PrivateKey() (crypto.PrivateKey, error) {
	return b.KeyStore.Key(AliasPrivateKey, b.Passphrase)
}
