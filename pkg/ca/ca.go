package ca

import (
	"crypto"
	"crypto/rand"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/cprice404/jvm-ssl-utils/pkg/logging"
)

// CA issues certificates and revocation lists under an explicit
// validity policy. It holds no key material of its own: the issuer
// private key is provided per operation and only referenced for the
// duration of the call.
type CA struct {
	config           *Config
	logger           *logging.Logger
	random           io.Reader
	requestAlgorithm x509.SignatureAlgorithm
	issuingAlgorithm x509.SignatureAlgorithm
}

// Creates a new certificate issuer. A nil Params or nil fields fall
// back to the default configuration, the default logger and the
// platform random source.
func NewCA(params *Params) (*CA, error) {

	if params == nil {
		params = &Params{}
	}

	config := params.Config
	if config == nil {
		defaults := DefaultConfig
		config = &defaults
	}
	if config.ClockSkewDays < 0 || config.ValidYears <= 0 {
		return nil, ErrInvalidConfig
	}

	requestAlgorithm, err := parseSignatureAlgorithm(config.RequestSignatureAlgorithm)
	if err != nil {
		return nil, err
	}
	issuingAlgorithm, err := parseSignatureAlgorithm(config.SignatureAlgorithm)
	if err != nil {
		return nil, err
	}

	logger := params.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	random := params.Random
	if random == nil {
		random = rand.Reader
	}

	return &CA{
		config:           config,
		logger:           logger,
		random:           random,
		requestAlgorithm: requestAlgorithm,
		issuingAlgorithm: issuingAlgorithm,
	}, nil
}

// Signs a certificate signing request into a certificate. The
// subject name and public key are copied verbatim from the request.
// The request's self-signature is NOT re-verified here: proof of
// possession is the caller's responsibility, a deliberate trust
// boundary that keeps accepted-input semantics identical for
// requests produced elsewhere.
//
// Validity is governed by the configured policy: notBefore is
// backdated by the clock skew tolerance so peers with lagging
// clocks accept the certificate immediately, and notAfter is the
// configured number of years from the issuance time. Serial number
// uniqueness per issuer is the caller's responsibility.
func (ca *CA) IssueCertificate(
	csr *x509.CertificateRequest,
	issuer pkix.Name,
	serial *big.Int,
	issuerKey crypto.Signer) (*x509.Certificate, error) {

	if csr == nil {
		return nil, ErrInvalidRequest
	}
	if serial == nil || serial.Sign() <= 0 {
		return nil, ErrInvalidSerialNumber
	}

	subjectCN, _ := CommonName(csr.Subject)
	ca.logger.Infof("issuing certificate for %s with serial %s", subjectCN, serial)

	now := time.Now()
	notBefore := now.AddDate(0, 0, -ca.config.ClockSkewDays)
	notAfter := notBefore.AddDate(ca.config.ValidYears, 0, ca.config.ClockSkewDays)

	template := &x509.Certificate{
		SerialNumber:       serial,
		RawSubject:         csr.RawSubject,
		NotBefore:          notBefore,
		NotAfter:           notAfter,
		SignatureAlgorithm: ca.issuingAlgorithm,
	}

	parent, err := issuerCertificate(issuer, issuerKey)
	if err != nil {
		return nil, err
	}

	der, err := x509.CreateCertificate(
		ca.random, template, parent, csr.PublicKey, issuerKey)
	if err != nil {
		ca.logger.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	certificate, err := x509.ParseCertificate(der)
	if err != nil {
		ca.logger.Error(err)
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return certificate, nil
}

// Builds the in-memory issuer certificate handed to the x509
// runtime. Only the subject and subject key identifier are
// consulted during signing; this is not a usable certificate and
// never leaves the package.
func issuerCertificate(issuer pkix.Name, issuerKey crypto.Signer) (*x509.Certificate, error) {

	if issuerKey == nil {
		return nil, ErrIncompatibleKey
	}

	rawIssuer, err := marshalName(issuer)
	if err != nil {
		return nil, err
	}

	keyID, err := subjectKeyIdentifier(issuerKey.Public())
	if err != nil {
		return nil, err
	}

	return &x509.Certificate{
		RawSubject:   rawIssuer,
		SubjectKeyId: keyID,
		KeyUsage:     x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}, nil
}

func marshalName(name pkix.Name) ([]byte, error) {
	raw, err := asn1.Marshal(name.ToRDNSequence())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return raw, nil
}

// Build Subject Key Identifier
func subjectKeyIdentifier(pub crypto.PublicKey) ([]byte, error) {
	var spki struct {
		Algorithm        pkix.AlgorithmIdentifier
		SubjectPublicKey asn1.BitString
	}
	spkiASN1, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleKey, err)
	}
	if _, err = asn1.Unmarshal(spkiASN1, &spki); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleKey, err)
	}
	skid := sha1.Sum(spki.SubjectPublicKey.Bytes)
	return skid[:], nil
}
