// Package cryptoprov provides a unified interface for generating the
// elliptic-curve key pairs used to sign certificate requests.
//
// This package abstracts key generation to support:
//   - In-memory keys via the inmemcrypto subpackage
//   - AWS KMS for cloud-based key management via the awskmscrypto subpackage
//   - Custom engines through the KeyEngine interface
//
// Engines register themselves by manufacturer name and are selected by
// a YAML or JSON engine configuration file. All keys are generated on
// named curves only.
package cryptoprov
