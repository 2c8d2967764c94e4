package csr

import (
	"github.com/cockroachdb/errors"
)

// Error markers. Use errors.Is to check the failed step.
var (
	// ErrInvalidInput is returned when the domain list is empty or contains an empty domain
	ErrInvalidInput = errors.New("invalid input")
	// ErrBuilderInit is returned when the builder can not be initialized
	ErrBuilderInit = errors.New("builder init failed")
	// ErrKeyBinding is returned when the public key can not be bound to the request
	ErrKeyBinding = errors.New("key binding failed")
	// ErrExtensionBuild is returned when the SAN extension can not be built
	ErrExtensionBuild = errors.New("extension build failed")
	// ErrSigning is returned when the request can not be signed
	ErrSigning = errors.New("signing failed")
	// ErrEncoding is returned when the request can not be serialized or parsed
	ErrEncoding = errors.New("encoding failed")
	// ErrFileWrite is returned when the serialized request can not be written
	ErrFileWrite = errors.New("file write failed")
	// ErrVerification is returned when the request does not pass verification
	ErrVerification = errors.New("verification failed")
)

// markf annotates err with the step message and tags it with the marker
func markf(err error, marker error, format string, args ...any) error {
	return errors.Mark(errors.WithMessagef(err, format, args...), marker)
}

// newf returns a new error tagged with the marker
func newf(marker error, format string, args ...any) error {
	return errors.Mark(errors.Errorf(format, args...), marker)
}
