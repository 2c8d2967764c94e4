// Package csr builds, serializes and validates PKCS#10 Certificate
// Signing Requests (RFC 2986) for a list of DNS names.
//
// This package supports:
//   - CSR creation with a single Subject Alternative Name extension
//     listing all requested domains, in order
//   - Deterministic DER serialization and PEM encoding
//   - Parsing and verification of serialized requests
//   - YAML or JSON request profiles
//
// Requests are built by a strictly linear pipeline: bind the public
// key, build the SAN extension in the context of the in-progress
// request, attach it, sign and finalize. The resulting Request is
// immutable.
//
// Keys are provided by the cryptoprov package, which supports
// in-memory and KMS backed key pairs.
package csr
