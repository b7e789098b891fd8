package pemcodec

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
)

var (
	ErrFormat = errors.New("pemcodec: malformed PEM stream")

	ErrUnexpectedObject   = fmt.Errorf("%w: unexpected object type", ErrFormat)
	ErrExpectedOneKey     = fmt.Errorf("%w: the stream must contain exactly one private key", ErrFormat)
	ErrExpectedOneRequest = fmt.Errorf("%w: the stream must contain exactly one certificate signing request", ErrFormat)
)

type Kind int

const (
	KindUnrecognized Kind = iota
	KindCertificate
	KindPrivateKey
	KindKeyPair
	KindCertificateRequest
	KindRevocationList
)

func (k Kind) String() string {
	switch k {
	case KindCertificate:
		return "certificate"
	case KindPrivateKey:
		return "private-key"
	case KindKeyPair:
		return "key-pair"
	case KindCertificateRequest:
		return "certificate-request"
	case KindRevocationList:
		return "revocation-list"
	}
	return "unrecognized"
}

// PEM armor block labels. The decoder assigns the object kind from
// the label alone, the caller never declares a type.
const (
	blockTypeCertificate   = "CERTIFICATE"
	blockTypePrivateKey    = "PRIVATE KEY"
	blockTypeRSAKeyPair    = "RSA PRIVATE KEY"
	blockTypeECKeyPair     = "EC PRIVATE KEY"
	blockTypeRequest       = "CERTIFICATE REQUEST"
	blockTypeLegacyRequest = "NEW CERTIFICATE REQUEST"
	blockTypeCRL           = "X509 CRL"
)

// A single decoded PEM object. Object is a closed tagged variant:
// the kind is assigned by the decoder from the armor block label and
// the typed accessors fail with ErrFormat on a tag mismatch.
type Object struct {
	kind  Kind
	cert  *x509.Certificate
	key   crypto.PrivateKey
	csr   *x509.CertificateRequest
	crl   *x509.RevocationList
	block *pem.Block
}

func (o Object) Kind() Kind {
	return o.kind
}

// Returns the decoded certificate, or ErrFormat if the object is
// not certificate-typed.
func (o Object) Certificate() (*x509.Certificate, error) {
	if o.kind != KindCertificate {
		return nil, fmt.Errorf("%w: got %s, want %s",
			ErrUnexpectedObject, o.kind, KindCertificate)
	}
	return o.cert, nil
}

// Returns the private key carried by a key-bearing object. A bare
// private key object yields the key directly; a legacy key pair
// object yields only its private half. Any other kind fails with
// ErrFormat.
func (o Object) PrivateKey() (crypto.PrivateKey, error) {
	if o.kind != KindPrivateKey && o.kind != KindKeyPair {
		return nil, fmt.Errorf("%w: got %s, want a private key or key pair",
			ErrUnexpectedObject, o.kind)
	}
	return o.key, nil
}

// Returns the decoded certificate signing request, or ErrFormat if
// the object is not request-typed.
func (o Object) CertificateRequest() (*x509.CertificateRequest, error) {
	if o.kind != KindCertificateRequest {
		return nil, fmt.Errorf("%w: got %s, want %s",
			ErrUnexpectedObject, o.kind, KindCertificateRequest)
	}
	return o.csr, nil
}

// Returns the decoded certificate revocation list, or ErrFormat if
// the object is not CRL-typed.
func (o Object) RevocationList() (*x509.RevocationList, error) {
	if o.kind != KindRevocationList {
		return nil, fmt.Errorf("%w: got %s, want %s",
			ErrUnexpectedObject, o.kind, KindRevocationList)
	}
	return o.crl, nil
}

// Returns the raw armor block the object was decoded from
func (o Object) Block() *pem.Block {
	return o.block
}

// Decoder reads a PEM armored stream as a lazy, finite sequence of
// typed objects. The underlying reader is drained exactly once at
// construction; the sequence is not restartable.
type Decoder struct {
	rest    []byte
	readErr error
}

func NewDecoder(r io.Reader) *Decoder {
	data, err := io.ReadAll(r)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return &Decoder{
		rest:    data,
		readErr: err,
	}
}

// Returns the next object in the stream, or io.EOF once the stream
// is exhausted. Text outside armor blocks is skipped, matching
// encoding/pem framing.
func (d *Decoder) Next() (Object, error) {
	if d.readErr != nil {
		return Object{}, d.readErr
	}
	block, rest := pem.Decode(d.rest)
	if block == nil {
		return Object{}, io.EOF
	}
	d.rest = rest
	return objectFromBlock(block)
}

// Decodes the entire stream into an ordered object sequence
func DecodeAll(r io.Reader) ([]Object, error) {
	decoder := NewDecoder(r)
	var objects []Object
	for {
		object, err := decoder.Next()
		if err == io.EOF {
			return objects, nil
		}
		if err != nil {
			return nil, err
		}
		objects = append(objects, object)
	}
}

// Decodes the stream into an ordered list of certificates. Fails
// with ErrFormat if any decoded object is not certificate-typed.
func DecodeCertificates(r io.Reader) ([]*x509.Certificate, error) {
	objects, err := DecodeAll(r)
	if err != nil {
		return nil, err
	}
	certs := make([]*x509.Certificate, len(objects))
	for i, object := range objects {
		cert, err := object.Certificate()
		if err != nil {
			return nil, err
		}
		certs[i] = cert
	}
	return certs, nil
}

// Decodes the stream into a single private key. Every object in the
// stream must be key-bearing and exactly one must be present,
// otherwise the decode fails with ErrFormat. A legacy key pair
// object yields only its private half; the public half is discarded
// to support sources that encode a pair with an absent public
// component.
func DecodePrivateKey(r io.Reader) (crypto.PrivateKey, error) {
	objects, err := DecodeAll(r)
	if err != nil {
		return nil, err
	}
	keys := make([]crypto.PrivateKey, len(objects))
	for i, object := range objects {
		key, err := object.PrivateKey()
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	if len(keys) != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrExpectedOneKey, len(keys))
	}
	return keys[0], nil
}

// Decodes the stream into a single certificate signing request.
// Fails with ErrFormat unless the stream contains exactly one
// object and it is request-typed.
func DecodeCSR(r io.Reader) (*x509.CertificateRequest, error) {
	objects, err := DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(objects) != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrExpectedOneRequest, len(objects))
	}
	return objects[0].CertificateRequest()
}

func objectFromBlock(block *pem.Block) (Object, error) {
	switch block.Type {

	case blockTypeCertificate:
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return Object{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Object{kind: KindCertificate, cert: cert, block: block}, nil

	case blockTypePrivateKey:
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return Object{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Object{kind: KindPrivateKey, key: key, block: block}, nil

	case blockTypeRSAKeyPair:
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return Object{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Object{kind: KindKeyPair, key: key, block: block}, nil

	case blockTypeECKeyPair:
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return Object{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Object{kind: KindKeyPair, key: key, block: block}, nil

	case blockTypeRequest, blockTypeLegacyRequest:
		csr, err := x509.ParseCertificateRequest(block.Bytes)
		if err != nil {
			return Object{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Object{kind: KindCertificateRequest, csr: csr, block: block}, nil

	case blockTypeCRL:
		crl, err := x509.ParseRevocationList(block.Bytes)
		if err != nil {
			return Object{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		return Object{kind: KindRevocationList, crl: crl, block: block}, nil
	}

	return Object{kind: KindUnrecognized, block: block}, nil
}
