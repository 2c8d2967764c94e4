package cryptoprov

import (
	"context"
	"crypto"
)

// DefaultManufacturer is the engine used when no configuration is provided
const DefaultManufacturer = "inmem"

// KeyPair is a private key held by a KeyEngine.
// The pair must be released with Close when no longer needed.
type KeyPair interface {
	crypto.Signer

	// ID returns the engine specific key identifier
	ID() string
	// Label returns the label provided at generation
	Label() string
	// Curve returns the named curve of the key
	Curve() Curve
	// Close releases the key handle
	Close() error
}

// KeyEngine generates key pairs on named curves
type KeyEngine interface {
	// Manufacturer name of the engine
	Manufacturer() string
	// Model name of the engine
	Model() string
	// GenerateKey creates a new key pair on the named curve
	GenerateKey(ctx context.Context, label string, curve Curve) (KeyPair, error)
}

// KeyExporter is implemented by engines that allow the private
// key material to leave the engine
type KeyExporter interface {
	// ExportKey returns PEM encoded private key
	ExportKey(kp KeyPair) ([]byte, error)
}
