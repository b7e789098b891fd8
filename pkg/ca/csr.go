package ca

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
)

// Builds a self-signed certificate signing request for the subject.
// The request embeds the subject name and the public half of the
// key pair, and is signed with the private half under the
// configured request scheme, proving possession of the key. The
// embedded public key and the self-signature are therefore
// consistent by construction and are not re-checked downstream.
//
// Subject alternative names and other extensions are not supported;
// callers needing extended leaf identities must extend the request
// externally.
func (ca *CA) CreateCSR(keyPair crypto.Signer, subject pkix.Name) (*x509.CertificateRequest, error) {

	if keyPair == nil {
		return nil, ErrIncompatibleKey
	}

	ca.logger.Infof("creating certificate signing request for %s", subject.CommonName)

	template := x509.CertificateRequest{
		Subject:            subject,
		SignatureAlgorithm: ca.requestAlgorithm,
	}

	der, err := x509.CreateCertificateRequest(ca.random, &template, keyPair)
	if err != nil {
		ca.logger.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	csr, err := x509.ParseCertificateRequest(der)
	if err != nil {
		ca.logger.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return csr, nil
}
