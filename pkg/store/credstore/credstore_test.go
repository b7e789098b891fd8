package credstore

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"

	"github.com/cprice404/jvm-ssl-utils/pkg/ca"
	"github.com/cprice404/jvm-ssl-utils/pkg/crypto/rsagen"
	"github.com/cprice404/jvm-ssl-utils/pkg/pemcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey   *rsa.PrivateKey
	testCert  *x509.Certificate
	testChain []*x509.Certificate
)

func TestMain(m *testing.M) {
	if err := setup(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func setup() error {

	authority, err := ca.NewCA(nil)
	if err != nil {
		return err
	}

	issue := func(cn string, serial int64) (*rsa.PrivateKey, *x509.Certificate, error) {
		key, err := rsagen.New(nil).GenerateKey(2048)
		if err != nil {
			return nil, nil, err
		}
		csr, err := authority.CreateCSR(key, ca.NewSubject(cn))
		if err != nil {
			return nil, nil, err
		}
		cert, err := authority.IssueCertificate(
			csr, ca.NewSubject("Credential Test CA"), big.NewInt(serial), key)
		if err != nil {
			return nil, nil, err
		}
		return key, cert, nil
	}

	key, cert, err := issue("identity.example.org", 1)
	if err != nil {
		return err
	}
	testKey = key
	testCert = cert

	for i, cn := range []string{"root.example.org", "intermediate.example.org", "issuer.example.org"} {
		_, anchor, err := issue(cn, int64(10+i))
		if err != nil {
			return err
		}
		testChain = append(testChain, anchor)
	}
	return nil
}

func pemOf(t *testing.T, objects ...any) *bytes.Buffer {
	buf := new(bytes.Buffer)
	for _, object := range objects {
		require.Nil(t, pemcodec.Encode(buf, object))
	}
	return buf
}

func TestSetCertificate(t *testing.T) {

	store := New()
	err := store.SetCertificate("server", testCert)
	assert.Nil(t, err)

	cert, err := store.Certificate("server")
	assert.Nil(t, err)
	assert.Equal(t, testCert.Raw, cert.Raw)
	assert.Equal(t, 1, store.Len())
}

func TestSetCertificateNil(t *testing.T) {

	store := New()
	err := store.SetCertificate("server", nil)
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 0, store.Len())
}

func TestSetCertificateOverwrites(t *testing.T) {

	store := New()
	require.Nil(t, store.SetCertificate("anchor", testChain[0]))
	require.Nil(t, store.SetCertificate("anchor", testChain[1]))

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []string{"anchor"}, store.Aliases())

	cert, err := store.Certificate("anchor")
	assert.Nil(t, err)
	assert.Equal(t, testChain[1].Raw, cert.Raw)
}

func TestSetCertificatesFrom(t *testing.T) {

	store := New()
	stream := pemOf(t, testChain[0], testChain[1], testChain[2])

	err := store.SetCertificatesFrom("CA", stream)
	assert.Nil(t, err)
	assert.Equal(t, []string{"CA-0", "CA-1", "CA-2"}, store.Aliases())

	for i, anchor := range testChain {
		cert, err := store.Certificate(fmt.Sprintf("CA-%d", i))
		require.Nil(t, err)
		assert.Equal(t, anchor.Raw, cert.Raw)
	}
}

func TestSetCertificatesFromMalformedStream(t *testing.T) {

	store := New()
	require.Nil(t, store.SetCertificate("existing", testCert))

	stream := pemOf(t, testChain[0], testKey)
	err := store.SetCertificatesFrom("CA", stream)
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, pemcodec.ErrFormat))

	// A malformed stream leaves the store untouched
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, []string{"existing"}, store.Aliases())
}

func TestKeyRoundTrip(t *testing.T) {

	store := New()
	err := store.SetPrivateKey("identity", testKey, "correct horse", testCert)
	assert.Nil(t, err)

	key, err := store.Key("identity", "correct horse")
	assert.Nil(t, err)

	rsaKey, ok := key.(*rsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, rsaKey.Equal(testKey))

	cert, err := store.Certificate("identity")
	assert.Nil(t, err)
	assert.Equal(t, testCert.Raw, cert.Raw)
}

func TestKeyWrongPassphrase(t *testing.T) {

	store := New()
	require.Nil(t, store.SetPrivateKey("identity", testKey, "right", testCert))

	_, err := store.Key("identity", "wrong")
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPassphrase))
}

func TestKeyRequiresCertificate(t *testing.T) {

	store := New()
	err := store.SetPrivateKey("identity", testKey, "secret", nil)
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrCertificateRequired))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, 0, store.Len())
}

func TestKeyOnCertificateEntry(t *testing.T) {

	store := New()
	require.Nil(t, store.SetCertificate("anchor", testCert))

	_, err := store.Key("anchor", "secret")
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrNotAKeyEntry))
}

func TestAliasNotFound(t *testing.T) {

	store := New()

	_, err := store.Certificate("missing")
	assert.True(t, errors.Is(err, ErrAliasNotFound))

	_, err = store.Key("missing", "secret")
	assert.True(t, errors.Is(err, ErrAliasNotFound))
}

func TestSetPrivateKeyFrom(t *testing.T) {

	store := New()
	err := store.SetPrivateKeyFrom(
		"identity", pemOf(t, testKey), "secret", pemOf(t, testCert))
	assert.Nil(t, err)

	key, err := store.Key("identity", "secret")
	assert.Nil(t, err)
	rsaKey, ok := key.(*rsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, rsaKey.Equal(testKey))
}

func TestSetPrivateKeyFromMultipleCertificates(t *testing.T) {

	store := New()
	err := store.SetPrivateKeyFrom(
		"identity", pemOf(t, testKey), "secret",
		pemOf(t, testCert, testChain[0]))
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrExpectedOneCertificate))
	assert.Equal(t, 0, store.Len())
}

func TestAssemble(t *testing.T) {

	bundle, err := Assemble(
		pemOf(t, testCert), pemOf(t, testKey),
		pemOf(t, testChain[0], testChain[1]))
	require.Nil(t, err)

	assert.Equal(t, []string{AliasPrivateKey}, bundle.KeyStore.Aliases())
	assert.Equal(t,
		[]string{AliasCACertificate + "-0", AliasCACertificate + "-1"},
		bundle.TrustStore.Aliases())
	assert.NotEmpty(t, bundle.Passphrase)

	cert, err := bundle.Certificate()
	assert.Nil(t, err)
	assert.Equal(t, testCert.Raw, cert.Raw)

	key, err := bundle.PrivateKey()
	assert.Nil(t, err)
	rsaKey, ok := key.(*rsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, rsaKey.Equal(testKey))
}

func TestAssemblePassphraseUnique(t *testing.T) {

	first, err := Assemble(
		pemOf(t, testCert), pemOf(t, testKey), pemOf(t, testChain[0]))
	require.Nil(t, err)

	second, err := Assemble(
		pemOf(t, testCert), pemOf(t, testKey), pemOf(t, testChain[0]))
	require.Nil(t, err)

	assert.NotEqual(t, first.Passphrase, second.Passphrase)
}

func TestAssembleMalformedIdentity(t *testing.T) {

	_, err := Assemble(
		pemOf(t, testCert, testChain[0]), pemOf(t, testKey),
		pemOf(t, testChain[0]))
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrExpectedOneCertificate))
}
