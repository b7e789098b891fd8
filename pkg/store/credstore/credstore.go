package credstore

import (
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"io"

	"github.com/cprice404/jvm-ssl-utils/pkg/pemcodec"
	libpkcs8 "github.com/youmark/pkcs8"
)

const (
	// Alias under which the single identity private key is stored
	// when a credential bundle is assembled
	AliasPrivateKey = "Private Key"

	// Alias prefix for trust anchors loaded from a stream during
	// bundle assembly
	AliasCACertificate = "CA Certificate"
)

var (
	ErrValidation = errors.New("store/credstore: validation failed")

	ErrCertificateRequired    = fmt.Errorf("%w: a private key may not be stored without an accompanying certificate", ErrValidation)
	ErrExpectedOneCertificate = fmt.Errorf("%w: the identity stream must contain exactly one certificate", ErrValidation)

	ErrAliasNotFound     = errors.New("store/credstore: alias not found")
	ErrNotAKeyEntry      = errors.New("store/credstore: alias does not reference a key entry")
	ErrInvalidPassphrase = errors.New("store/credstore: invalid passphrase")
)

type entry struct {
	certificate *x509.Certificate
	sealedKey   []byte // encrypted PKCS #8 DER, nil for certificate entries
}

// Store is an in-memory, alias-keyed credential container. A
// certificate entry holds a trusted certificate; a key entry holds
// a private key sealed under a passphrase together with its
// authenticating certificate. Aliases are unique within a store;
// re-using one overwrites the prior entry. Insertion order is
// preserved for enumeration.
//
// Stores are plain values with no sharing between calls; they are
// not safe for concurrent mutation.
type Store struct {
	order   []string
	entries map[string]entry
}

// Creates a new empty credential store
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
	}
}

// Associates a certificate with the alias. Re-using an alias
// replaces the prior entry rather than failing; callers relying on
// distinct entries must choose distinct aliases.
func (s *Store) SetCertificate(alias string, certificate *x509.Certificate) error {
	if certificate == nil {
		return fmt.Errorf("%w: nil certificate", ErrValidation)
	}
	s.put(alias, entry{certificate: certificate})
	return nil
}

// Decodes every certificate from the PEM stream and stores each
// under "<prefix>-<index>", zero-based, in stream order. The store
// is only mutated once the whole stream has decoded, so a malformed
// stream leaves it untouched.
func (s *Store) SetCertificatesFrom(prefix string, r io.Reader) error {
	certificates, err := pemcodec.DecodeCertificates(r)
	if err != nil {
		return err
	}
	for i, certificate := range certificates {
		s.put(fmt.Sprintf("%s-%d", prefix, i), entry{certificate: certificate})
	}
	return nil
}

// Stores a private key sealed under the passphrase. A key may never
// enter the store without an authenticating certificate; a nil
// certificate fails with ErrCertificateRequired and leaves the
// store untouched.
func (s *Store) SetPrivateKey(
	alias string,
	key crypto.PrivateKey,
	passphrase string,
	certificate *x509.Certificate) error {

	if certificate == nil {
		return ErrCertificateRequired
	}
	if key == nil {
		return fmt.Errorf("%w: nil private key", ErrValidation)
	}

	sealed, err := libpkcs8.MarshalPrivateKey(key, []byte(passphrase), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.put(alias, entry{certificate: certificate, sealedKey: sealed})
	return nil
}

// Decodes a single private key and a single certificate from the
// PEM streams and stores them as a key entry under the alias. The
// key stream must contain exactly one key-bearing object and the
// certificate stream exactly one certificate.
func (s *Store) SetPrivateKeyFrom(
	alias string,
	keyPEM io.Reader,
	passphrase string,
	certPEM io.Reader) error {

	key, err := pemcodec.DecodePrivateKey(keyPEM)
	if err != nil {
		return err
	}

	certificates, err := pemcodec.DecodeCertificates(certPEM)
	if err != nil {
		return err
	}
	if len(certificates) != 1 {
		return fmt.Errorf("%w, got %d", ErrExpectedOneCertificate, len(certificates))
	}

	return s.SetPrivateKey(alias, key, passphrase, certificates[0])
}

// Returns the certificate stored under the alias. For key entries
// this is the authenticating certificate.
func (s *Store) Certificate(alias string) (*x509.Certificate, error) {
	e, ok := s.entries[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAliasNotFound, alias)
	}
	return e.certificate, nil
}

// Unseals and returns the private key stored under the alias
func (s *Store) Key(alias, passphrase string) (crypto.PrivateKey, error) {
	e, ok := s.entries[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAliasNotFound, alias)
	}
	if e.sealedKey == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotAKeyEntry, alias)
	}
	key, err := libpkcs8.ParsePKCS8PrivateKey(e.sealedKey, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPassphrase, err)
	}
	return key, nil
}

// Returns the store's aliases in insertion order
func (s *Store) Aliases() []string {
	aliases := make([]string, len(s.order))
	copy(aliases, s.order)
	return aliases
}

func (s *Store) Len() int {
	return len(s.entries)
}

func (s *Store) put(alias string, e entry) {
	if _, exists := s.entries[alias]; !exists {
		s.order = append(s.order, alias)
	}
	s.entries[alias] = e
}
