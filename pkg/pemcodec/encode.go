package pemcodec

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
)

var ErrUnsupportedEncodeType = fmt.Errorf("%w: object type cannot be PEM encoded", ErrFormat)

// Encodes a single object to the writer as one armored block. The
// caller controls append / overwrite semantics of the underlying
// stream. RSA and EC private keys are written in their legacy key
// pair armor, other keys in PKCS #8 form, so that every encoded
// object decodes back to the same kind.
func Encode(w io.Writer, obj any) error {

	block, err := blockFor(obj)
	if err != nil {
		return err
	}
	return pem.Encode(w, block)
}

func blockFor(obj any) (*pem.Block, error) {
	switch o := obj.(type) {

	case Object:
		return o.block, nil

	case *x509.Certificate:
		return &pem.Block{Type: blockTypeCertificate, Bytes: o.Raw}, nil

	case *x509.CertificateRequest:
		return &pem.Block{Type: blockTypeRequest, Bytes: o.Raw}, nil

	case *x509.RevocationList:
		return &pem.Block{Type: blockTypeCRL, Bytes: o.Raw}, nil

	case *rsa.PrivateKey:
		return &pem.Block{
			Type:  blockTypeRSAKeyPair,
			Bytes: x509.MarshalPKCS1PrivateKey(o),
		}, nil

	case *ecdsa.PrivateKey:
		der, err := x509.MarshalECPrivateKey(o)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return &pem.Block{Type: blockTypeECKeyPair, Bytes: der}, nil

	case ed25519.PrivateKey:
		der, err := x509.MarshalPKCS8PrivateKey(o)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return &pem.Block{Type: blockTypePrivateKey, Bytes: der}, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedEncodeType, obj)
}
