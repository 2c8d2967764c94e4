// Package inmemcrypto provides KeyEngine that generates ECDSA keys
// in process memory. It is the default engine.
package inmemcrypto

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/certutil"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcsr", "inmemcrypto")

// ProviderName specifies a provider name
const ProviderName = cryptoprov.DefaultManufacturer

func init() {
	_ = cryptoprov.Register(ProviderName, Loader)
}

// Engine implements cryptoprov.KeyEngine for in-memory keys
type Engine struct {
	model string
	rand  io.Reader
}

// Loader returns in-memory engine
func Loader(cfg *cryptoprov.EngineConfig) (cryptoprov.KeyEngine, error) {
	return New(cfg.Model), nil
}

// New returns in-memory engine
func New(model string) *Engine {
	if model == "" {
		model = "memory"
	}
	return &Engine{
		model: model,
		rand:  rand.Reader,
	}
}

// Manufacturer returns manufacturer for the engine
func (e *Engine) Manufacturer() string {
	return ProviderName
}

// Model returns model for the engine
func (e *Engine) Model() string {
	return e.model
}

// GenerateKey creates ECDSA key pair on the named curve
func (e *Engine) GenerateKey(_ context.Context, label string, curve cryptoprov.Curve) (cryptoprov.KeyPair, error) {
	defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, "genkey_ecdsa")

	ec := curve.Elliptic()
	if ec == nil {
		return nil, errors.Errorf("unsupported curve: %q", curve)
	}

	pvk, err := ecdsa.GenerateKey(ec, e.rand)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to generate key with label: %q", label)
	}

	kp, err := newKeyPair(label, curve, pvk)
	if err != nil {
		return nil, err
	}

	logger.KV(xlog.DEBUG, "id", kp.id, "label", label, "curve", curve)
	return kp, nil
}

// ImportKey wraps an existing ECDSA private key
func (e *Engine) ImportKey(label string, pvk crypto.Signer) (cryptoprov.KeyPair, error) {
	key, ok := pvk.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("unsupported key: %T", pvk)
	}
	curve, err := cryptoprov.CurveOf(key.Public())
	if err != nil {
		return nil, err
	}
	return newKeyPair(label, curve, key)
}

// ExportKey returns PEM encoded private key
func (e *Engine) ExportKey(kp cryptoprov.KeyPair) ([]byte, error) {
	k, ok := kp.(*KeyPair)
	if !ok {
		return nil, errors.Errorf("not in-memory key: %T", kp)
	}

	k.lock.RLock()
	defer k.lock.RUnlock()
	if k.pvk == nil {
		return nil, errors.New("key is closed")
	}
	return certutil.EncodePrivateKeyToPEM(k.pvk)
}

// KeyPair is in-memory key pair
type KeyPair struct {
	id    string
	label string
	curve cryptoprov.Curve
	pub   crypto.PublicKey

	lock sync.RWMutex
	pvk  *ecdsa.PrivateKey
}

func newKeyPair(label string, curve cryptoprov.Curve, pvk *ecdsa.PrivateKey) (*KeyPair, error) {
	id, err := certutil.KeyThumbprint(pvk.Public())
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		id:    id,
		label: label,
		curve: curve,
		pub:   pvk.Public(),
		pvk:   pvk,
	}, nil
}

// ID returns RFC 7638 thumbprint of the public key
func (k *KeyPair) ID() string {
	return k.id
}

// Label returns key label
func (k *KeyPair) Label() string {
	return k.label
}

// Curve returns named curve
func (k *KeyPair) Curve() cryptoprov.Curve {
	return k.curve
}

// Public returns public key
func (k *KeyPair) Public() crypto.PublicKey {
	return k.pub
}

// Sign implements crypto.Signer
func (k *KeyPair) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, "sign")

	k.lock.RLock()
	defer k.lock.RUnlock()
	if k.pvk == nil {
		return nil, errors.New("key is closed")
	}
	return k.pvk.Sign(rand, digest, opts)
}

// Close drops the private key
func (k *KeyPair) Close() error {
	k.lock.Lock()
	defer k.lock.Unlock()
	k.pvk = nil
	return nil
}
