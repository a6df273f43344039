package banner

import (
	"errors"
	"fmt"
)

// ErrTransport indicates a network or HTTP-level failure.
type ErrTransport struct {
	Err error
}

func (e ErrTransport) Error() string {
	return fmt.Errorf("transport: %w", e.Err).Error()
}

func (e ErrTransport) Unwrap() error {
	return e.Err
}

// ErrAuthorization indicates the term authorization handshake failed.
type ErrAuthorization struct {
	Err error
}

func (e ErrAuthorization) Error() string {
	return fmt.Errorf("authorization: %w", e.Err).Error()
}

func (e ErrAuthorization) Unwrap() error {
	return e.Err
}

// ErrParse indicates a malformed JSON payload or unmatched HTML structure.
type ErrParse struct {
	Err error
}

func (e ErrParse) Error() string {
	return fmt.Errorf("parse: %w", e.Err).Error()
}

func (e ErrParse) Unwrap() error {
	return e.Err
}

func errStatus(code int) error {
	return fmt.Errorf("http status %d", code)
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var transport ErrTransport
	if errors.As(err, &transport) {
		return "transport"
	}
	var auth ErrAuthorization
	if errors.As(err, &auth) {
		return "authorization"
	}
	var parse ErrParse
	if errors.As(err, &parse) {
		return "parse"
	}
	return "other"
}
