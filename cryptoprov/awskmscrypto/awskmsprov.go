// Package awskmscrypto provides KeyEngine backed by AWS KMS.
// Private keys never leave KMS, signing is performed remotely.
package awskmscrypto

import (
	"context"
	"crypto/x509"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcsr", "awskmscrypto")

// ProviderName specifies a provider name
const ProviderName = "AWSKMS"

// defaultPendingWindowInDays is the waiting period before KMS deletes a scheduled key
const defaultPendingWindowInDays = 7

func init() {
	_ = cryptoprov.Register(ProviderName, KmsLoader)
}

// KmsClient interface
type KmsClient interface {
	CreateKey(context.Context, *kms.CreateKeyInput, ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	DescribeKey(context.Context, *kms.DescribeKeyInput, ...func(*kms.Options)) (*kms.DescribeKeyOutput, error)
	GetPublicKey(context.Context, *kms.GetPublicKeyInput, ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
	Sign(context.Context, *kms.SignInput, ...func(*kms.Options)) (*kms.SignOutput, error)
	ScheduleKeyDeletion(context.Context, *kms.ScheduleKeyDeletionInput, ...func(*kms.Options)) (*kms.ScheduleKeyDeletionOutput, error)
}

// KmsClientFactory override for unittest
var KmsClientFactory = func(cfg aws.Config, optFns ...func(*kms.Options)) KmsClient {
	return kms.NewFromConfig(cfg, optFns...)
}

// Provider implements cryptoprov.KeyEngine interface for KMS
type Provider struct {
	cfg       *cryptoprov.EngineConfig
	kmsClient KmsClient
	endpoint  string
	region    string

	// deleteOnClose schedules deletion of generated keys on KeyPair.Close
	deleteOnClose       bool
	pendingWindowInDays int32
}

// KmsLoader returns KMS engine
func KmsLoader(cfg *cryptoprov.EngineConfig) (cryptoprov.KeyEngine, error) {
	p, err := Init(cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Init configures KMS based engine.
// Supported attributes: Region, Endpoint, DeleteOnClose, PendingWindowInDays.
func Init(cfg *cryptoprov.EngineConfig) (*Provider, error) {
	ctx := context.Background()
	attrs := cfg.AttributesMap()

	p := &Provider{
		cfg:                 cfg,
		endpoint:            attrs["Endpoint"],
		region:              attrs["Region"],
		pendingWindowInDays: defaultPendingWindowInDays,
	}

	if v := attrs["DeleteOnClose"]; v != "" {
		del, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid DeleteOnClose attribute")
		}
		p.deleteOnClose = del
	}
	if v := attrs["PendingWindowInDays"]; v != "" {
		days, err := strconv.ParseInt(v, 10, 32)
		if err != nil || days < 7 || days > 30 {
			return nil, errors.Errorf("invalid PendingWindowInDays attribute: %q", v)
		}
		p.pendingWindowInDays = int32(days)
	}

	var awsops []func(*awsconfig.LoadOptions) error
	if p.region != "" {
		awsops = append(awsops, awsconfig.WithRegion(p.region))
	}

	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	token := os.Getenv("AWS_SESSION_TOKEN")
	if id != "" && secret != "" {
		awsops = append(awsops, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(id, secret, token)))
	}

	awscfg, err := awsconfig.LoadDefaultConfig(ctx, awsops...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var kmsops []func(*kms.Options)
	if p.endpoint != "" {
		endpoint := p.endpoint
		kmsops = append(kmsops, func(o *kms.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	p.kmsClient = KmsClientFactory(awscfg, kmsops...)

	return p, nil
}

// Manufacturer returns manufacturer for the provider
func (p *Provider) Manufacturer() string {
	return ProviderName
}

// Model returns model for the provider
func (p *Provider) Model() string {
	return p.cfg.Model
}

// GenerateKey creates ECDSA key in KMS on the named curve
func (p *Provider) GenerateKey(ctx context.Context, label string, curve cryptoprov.Curve) (cryptoprov.KeyPair, error) {
	defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, "genkey_ecdsa")

	var spec types.KeySpec
	switch curve {
	case cryptoprov.P256:
		spec = types.KeySpecEccNistP256
	case cryptoprov.P384:
		spec = types.KeySpecEccNistP384
	case cryptoprov.P521:
		spec = types.KeySpecEccNistP521
	default:
		return nil, errors.Errorf("unsupported curve: %q", curve)
	}

	label = p.cfg.KeyLabel(label)

	// 1. Create key in KMS
	input := &kms.CreateKeyInput{
		KeySpec:     spec,
		KeyUsage:    types.KeyUsageTypeSignVerify,
		Description: &label,
	}
	resp, err := p.kmsClient.CreateKey(ctx, input)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create key with label: %q", label)
	}

	keyID := aws.ToString(resp.KeyMetadata.KeyId)
	arn := aws.ToString(resp.KeyMetadata.Arn)

	logger.KV(xlog.INFO, "arn", arn, "id", keyID, "label", label, "curve", curve)

	// 2. Retrieve public key from KMS
	signer, err := p.newSigner(ctx, keyID, label)
	if err != nil {
		// the caller never gets a handle to the new key
		if derr := p.scheduleDeletion(ctx, keyID); derr != nil {
			logger.KV(xlog.ERROR, "id", keyID, "err", derr.Error())
		}
		return nil, err
	}
	signer.deleteOnClose = p.deleteOnClose
	return signer, nil
}

// GetKey returns key pair for an existing KMS key.
// Closing the returned key pair never schedules the key for deletion.
func (p *Provider) GetKey(ctx context.Context, keyID string) (cryptoprov.KeyPair, error) {
	defer metricskey.PerfCryptoOperation.MeasureSince(time.Now(), ProviderName, "getkey")

	ki, err := p.kmsClient.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: &keyID})
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to describe key, id=%s", keyID)
	}
	if ki.KeyMetadata.KeyState == types.KeyStatePendingDeletion {
		return nil, errors.Errorf("key is pending deletion, id=%s", keyID)
	}

	return p.newSigner(ctx, keyID, aws.ToString(ki.KeyMetadata.Description))
}

func (p *Provider) newSigner(ctx context.Context, keyID, label string) (*Signer, error) {
	resp, err := p.kmsClient.GetPublicKey(ctx, &kms.GetPublicKeyInput{KeyId: &keyID})
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to get public key, id=%s", keyID)
	}

	pub, err := x509.ParsePKIXPublicKey(resp.PublicKey)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to parse public key, id=%s", keyID)
	}

	curve, err := cryptoprov.CurveOf(pub)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid public key, id=%s", keyID)
	}

	return NewSigner(keyID, label, curve, resp.SigningAlgorithms, pub, p), nil
}

// scheduleDeletion schedules key deletion in KMS
func (p *Provider) scheduleDeletion(ctx context.Context, keyID string) error {
	resp, err := p.kmsClient.ScheduleKeyDeletion(ctx, &kms.ScheduleKeyDeletionInput{
		KeyId:               &keyID,
		PendingWindowInDays: aws.Int32(p.pendingWindowInDays),
	})
	if err != nil {
		return errors.WithMessagef(err, "failed to schedule key deletion: %s", keyID)
	}
	logger.KV(xlog.NOTICE, "id", keyID, "deletion_time", aws.ToTime(resp.DeletionDate).Format(time.RFC3339))

	return nil
}
