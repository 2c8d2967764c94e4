package certutil

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/cockroachdb/errors"
)

// PEM block types
const (
	PEMTypeCertificateRequest    = "CERTIFICATE REQUEST"
	PEMTypeNewCertificateRequest = "NEW CERTIFICATE REQUEST"
	PEMTypeECPrivateKey          = "EC PRIVATE KEY"
	PEMTypePrivateKey            = "PRIVATE KEY"
	PEMTypePublicKey             = "PUBLIC KEY"
)

// EncodePublicKeyToPEM returns PEM encoded public key
func EncodePublicKeyToPEM(pubKey crypto.PublicKey) ([]byte, error) {
	asn1Bytes, err := x509.MarshalPKIXPublicKey(pubKey)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var pemkey = &pem.Block{
		Type:  PEMTypePublicKey,
		Bytes: asn1Bytes,
	}

	b := bytes.NewBuffer([]byte{})

	err = pem.Encode(b, pemkey)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b.Bytes(), nil
}

// EncodePrivateKeyToPEM returns PEM encoded private key
func EncodePrivateKeyToPEM(priv crypto.PrivateKey) ([]byte, error) {
	switch priv := priv.(type) {
	case *ecdsa.PrivateKey:
		key, err := x509.MarshalECPrivateKey(priv)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		block := pem.Block{
			Type:  PEMTypeECPrivateKey,
			Bytes: key,
		}
		return pem.EncodeToMemory(&block), nil
	default:
		return nil, errors.Errorf("unsupported key: %T", priv)
	}
}

// ParsePrivateKeyPEM parses and returns a PEM-encoded private
// key. The private key may be either an unencrypted PKCS#8,
// or SEC 1 elliptic private key.
func ParsePrivateKeyPEM(keyPEM []byte) (crypto.Signer, error) {
	keyDER, err := GetKeyDERFromPEM(keyPEM)
	if err != nil {
		return nil, err
	}

	return ParsePrivateKeyDER(keyDER)
}

// GetKeyDERFromPEM parses a PEM-encoded private key and returns DER-format key bytes.
func GetKeyDERFromPEM(in []byte) ([]byte, error) {
	// Ignore any EC PARAMETERS blocks when looking for a key (openssl includes
	// them by default).
	var keyDER *pem.Block
	for {
		keyDER, in = pem.Decode(in)
		if keyDER == nil || keyDER.Type != "EC PARAMETERS" {
			break
		}
	}
	if keyDER == nil {
		return nil, errors.Errorf("unable to decode private key")
	}
	if procType, ok := keyDER.Headers["Proc-Type"]; ok && strings.Contains(procType, "ENCRYPTED") {
		return nil, errors.Errorf("encrypted private key")
	}
	return keyDER.Bytes, nil
}

// ParsePrivateKeyDER parses a PKCS #8 or SEC 1 DER-encoded ECDSA
// private key. The key must not be in PEM format.
func ParsePrivateKeyDER(keyDER []byte) (crypto.Signer, error) {
	generalKey, err := x509.ParsePKCS8PrivateKey(keyDER)
	if err != nil {
		generalKey, err = x509.ParseECPrivateKey(keyDER)
		if err != nil {
			// the underlying error is not included,
			// it may leak details about the key
			return nil, errors.Errorf("unable to parse private key")
		}
	}

	if k, ok := generalKey.(*ecdsa.PrivateKey); ok {
		return k, nil
	}

	return nil, errors.Errorf("unsupported key: %T", generalKey)
}
