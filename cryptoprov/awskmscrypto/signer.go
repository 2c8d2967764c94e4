package awskmscrypto

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/metricskey"
	"github.com/effective-security/xlog"
)

// Signer implements cryptoprov.KeyPair interface for a KMS key
type Signer struct {
	keyID             string
	label             string
	curve             cryptoprov.Curve
	signingAlgorithms []types.SigningAlgorithmSpec
	pubKey            crypto.PublicKey
	prov              *Provider

	deleteOnClose bool
	closeOnce     sync.Once
	closeErr      error
}

// NewSigner creates new signer
func NewSigner(keyID, label string, curve cryptoprov.Curve, signingAlgorithms []types.SigningAlgorithmSpec, publicKey crypto.PublicKey, prov *Provider) *Signer {
	logger.KV(xlog.DEBUG, "id", keyID, "label", label, "algos", signingAlgorithms)
	return &Signer{
		keyID:             keyID,
		label:             label,
		curve:             curve,
		signingAlgorithms: signingAlgorithms,
		pubKey:            publicKey,
		prov:              prov,
	}
}

// ID returns key id of the signer
func (s *Signer) ID() string {
	return s.keyID
}

// Label returns key label of the signer
func (s *Signer) Label() string {
	return s.label
}

// Curve returns named curve of the key
func (s *Signer) Curve() cryptoprov.Curve {
	return s.curve
}

// Public returns public key for the signer
func (s *Signer) Public() crypto.PublicKey {
	return s.pubKey
}

func (s *Signer) String() string {
	return fmt.Sprintf("id=%s, label=%s",
		s.ID(),
		s.Label(),
	)
}

// Close schedules the key for deletion, if the engine is configured
// with DeleteOnClose
func (s *Signer) Close() error {
	if !s.deleteOnClose {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closeErr = s.prov.scheduleDeletion(context.Background(), s.keyID)
	})
	return s.closeErr
}

// Sign implements signing operation
func (s *Signer) Sign(_ io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, "sign")

	algo, err := sigAlgo(s.pubKey, opts)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to determine signature algorithm")
	}
	if len(s.signingAlgorithms) > 0 && !supported(s.signingAlgorithms, algo) {
		return nil, errors.Errorf("signing algorithm %s is not supported by key %s", algo, s.keyID)
	}

	req := &kms.SignInput{
		KeyId:            &s.keyID,
		Message:          digest,
		MessageType:      types.MessageTypeDigest,
		SigningAlgorithm: algo,
	}
	resp, err := s.prov.kmsClient.Sign(context.Background(), req)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to sign")
	}
	// KMS returns ECDSA signature DER encoded, as crypto.Signer requires
	return resp.Signature, nil
}

func supported(list []types.SigningAlgorithmSpec, algo types.SigningAlgorithmSpec) bool {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = string(a)
	}
	return slices.ContainsString(names, string(algo))
}

func sigAlgo(publicKey crypto.PublicKey, opts crypto.SignerOpts) (types.SigningAlgorithmSpec, error) {
	if _, ok := publicKey.(*ecdsa.PublicKey); !ok {
		return "", errors.Errorf("unknown type of public key: %s", reflect.TypeOf(publicKey))
	}

	switch opts.HashFunc() {
	case crypto.SHA256:
		return types.SigningAlgorithmSpecEcdsaSha256, nil
	case crypto.SHA384:
		return types.SigningAlgorithmSpecEcdsaSha384, nil
	case crypto.SHA512:
		return types.SigningAlgorithmSpecEcdsaSha512, nil
	default:
		return "", errors.Errorf("unsupported hash: %s", opts.HashFunc())
	}
}
