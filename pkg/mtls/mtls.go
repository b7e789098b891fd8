package mtls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"

	"github.com/cprice404/jvm-ssl-utils/pkg/logging"
	"github.com/cprice404/jvm-ssl-utils/pkg/store/credstore"
)

var ErrConfiguration = errors.New("mtls: TLS context configuration failed")

// Factory builds TLS contexts from PEM credential streams. The
// credential bundle assembled for a context lives only as long as
// the context; nothing is persisted.
type Factory struct {
	logger *logging.Logger
}

func NewFactory(logger *logging.Logger) Factory {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return Factory{
		logger: logger,
	}
}

// Builds a TLS context carrying both an identity and trust anchors,
// for peers that require client authentication. The identity
// certificate and private key are read from their PEM streams and
// the CA certificate stream seeds both the root and client
// certificate pools.
func (f Factory) MutualContext(certPEM, keyPEM, caCertPEM io.Reader) (*tls.Config, error) {

	f.logger.Debug("mtls: building mutual TLS context")

	bundle, err := credstore.Assemble(certPEM, keyPEM, caCertPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	identity, err := IdentityCertificate(bundle)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	pool, err := TrustPool(bundle.TrustStore)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{identity},
		RootCAs:      pool,
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		// Force TLS 1.3 to protect against TLS downgrade attacks
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,
	}, nil
}

// Builds a TLS context carrying trust anchors only, for clients
// validating a custom CA without presenting a certificate of their
// own.
func (f Factory) TrustOnlyContext(caCertPEM io.Reader) (*tls.Config, error) {

	f.logger.Debug("mtls: building trust-only TLS context")

	truststore := credstore.New()
	if err := truststore.SetCertificatesFrom(
		credstore.AliasCACertificate, caCertPEM); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	pool, err := TrustPool(truststore)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &tls.Config{
		RootCAs: pool,
		// Force TLS 1.3 to protect against TLS downgrade attacks
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,
	}, nil
}

// Builds the identity tls.Certificate from an assembled bundle,
// unsealing the private key with the bundle passphrase
func IdentityCertificate(bundle *credstore.Bundle) (tls.Certificate, error) {

	certificate, err := bundle.Certificate()
	if err != nil {
		return tls.Certificate{}, err
	}

	key, err := bundle.PrivateKey()
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		PrivateKey:  key,
		Leaf:        certificate,
		Certificate: [][]byte{certificate.Raw},
	}, nil
}

// Builds an x509 certificate pool from every certificate entry in
// the store, in insertion order
func TrustPool(store *credstore.Store) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	for _, alias := range store.Aliases() {
		certificate, err := store.Certificate(alias)
		if err != nil {
			return nil, err
		}
		pool.AddCert(certificate)
	}
	return pool, nil
}
