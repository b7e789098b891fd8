package ca

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"time"

	"github.com/cprice404/jvm-ssl-utils/pkg/util"
)

// Issues a signed, empty certificate revocation list for the
// issuer. The list carries no revoked entries and promises its next
// update a century out: a deliberate policy for deployments without
// an active revocation workflow, where the list exists only so that
// relying parties requiring a CRL have a valid one to consume.
func (ca *CA) CreateCRL(issuer pkix.Name, issuerKey crypto.Signer) (*x509.RevocationList, error) {

	issuerCN, _ := CommonName(issuer)
	ca.logger.Infof("issuing certificate revocation list for %s", issuerCN)

	// crypto/x509 refuses to sign a list without a CRL number, so
	// each list gets a fresh 128-bit one.
	number, err := util.X509SerialNumber()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	now := time.Now()
	template := &x509.RevocationList{
		Number:             number,
		ThisUpdate:         now,
		NextUpdate:         now.AddDate(ca.config.CRLNextUpdateYears, 0, 0),
		SignatureAlgorithm: ca.issuingAlgorithm,
	}

	parent, err := issuerCertificate(issuer, issuerKey)
	if err != nil {
		return nil, err
	}

	der, err := x509.CreateRevocationList(ca.random, template, parent, issuerKey)
	if err != nil {
		ca.logger.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	crl, err := x509.ParseRevocationList(der)
	if err != nil {
		ca.logger.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return crl, nil
}
