package ca

import (
	"crypto/x509/pkix"
	"encoding/asn1"
)

var oidCommonName = asn1.ObjectIdentifier{2, 5, 4, 3}

// Builds a distinguished name carrying a single common name
// attribute. Multi-attribute subjects are out of scope for this
// library; peers are identified by common name alone.
func NewSubject(commonName string) pkix.Name {
	return pkix.Name{
		CommonName: commonName,
	}
}

// Returns the common name attribute of a distinguished name. Parsed
// names may carry multiple CN attributes; the first one wins. Fails
// with ErrCommonNameNotFound if no CN attribute is present.
func CommonName(name pkix.Name) (string, error) {
	for _, attribute := range name.Names {
		if !attribute.Type.Equal(oidCommonName) {
			continue
		}
		if cn, ok := attribute.Value.(string); ok {
			return cn, nil
		}
	}
	if name.CommonName != "" {
		return name.CommonName, nil
	}
	return "", ErrCommonNameNotFound
}
