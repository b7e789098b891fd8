package ca

import (
	"errors"
	"fmt"
	"io"

	"github.com/cprice404/jvm-ssl-utils/pkg/logging"
)

var (
	ErrInvalidConfig       = errors.New("certificate-authority: invalid configuration")
	ErrInvalidRequest      = errors.New("certificate-authority: invalid certificate signing request")
	ErrInvalidSerialNumber = errors.New("certificate-authority: invalid serial number")
	ErrCommonNameNotFound  = errors.New("certificate-authority: no common name attribute present")

	ErrSigning         = errors.New("certificate-authority: signing failed")
	ErrIncompatibleKey = fmt.Errorf("%w: key incompatible with signature scheme", ErrSigning)
)

type Params struct {
	Config *Config
	Logger *logging.Logger
	Random io.Reader
}
