package ca

import (
	"crypto/x509"
	"fmt"
	"strings"
)

type Config struct {
	// Days of clock skew tolerance. Issued certificates become
	// valid this many days before the issuance time so that peers
	// with badly synchronized clocks accept them immediately.
	ClockSkewDays int `yaml:"clock-skew-days" json:"clock_skew_days" mapstructure:"clock-skew-days"`

	// Years of validity granted to issued certificates, measured
	// from the issuance time
	ValidYears int `yaml:"issued-valid-years" json:"issued_valid_years" mapstructure:"issued-valid-years"`

	// Years until the next revocation list update is promised
	CRLNextUpdateYears int `yaml:"crl-next-update-years" json:"crl_next_update_years" mapstructure:"crl-next-update-years"`

	// Signature scheme used to self-sign certificate signing
	// requests. Deliberately a weaker tier than the certificate
	// scheme; the request signature only proves possession and is
	// replaced at issuance.
	RequestSignatureAlgorithm string `yaml:"request-signature-algorithm" json:"request_signature_algorithm" mapstructure:"request-signature-algorithm"`

	// Signature scheme used to sign issued certificates and
	// revocation lists
	SignatureAlgorithm string `yaml:"signature-algorithm" json:"signature_algorithm" mapstructure:"signature-algorithm"`
}

var DefaultConfig = Config{
	ClockSkewDays:             1,
	ValidYears:                5,
	CRLNextUpdateYears:        100,
	RequestSignatureAlgorithm: "SHA1WithRSA",
	SignatureAlgorithm:        "SHA256WithRSA",
}

var signatureAlgorithms = map[string]x509.SignatureAlgorithm{
	"sha1withrsa":   x509.SHA1WithRSA,
	"sha256withrsa": x509.SHA256WithRSA,
	"sha384withrsa": x509.SHA384WithRSA,
	"sha512withrsa": x509.SHA512WithRSA,
}

func parseSignatureAlgorithm(name string) (x509.SignatureAlgorithm, error) {
	algorithm, ok := signatureAlgorithms[strings.ToLower(name)]
	if !ok {
		return x509.UnknownSignatureAlgorithm,
			fmt.Errorf("%w: unsupported signature algorithm %q", ErrInvalidConfig, name)
	}
	return algorithm, nil
}
