// Package crypto exposes the primitives behind sigil identities.
//
// Contents
//
//   - ECDSA P-384 key generation, signing and verification (GenerateP384,
//     Sign, Verify) over SHA-384 digests
//   - Opaque key handles (PublicKey, PrivateKey) and their textual transport
//     form: base64 SPKI and PKCS#8 (ExportPublicKey, ImportPrivateKey, ...)
//   - Strict standard base64 (EncodeBinary, DecodeBinary)
//   - Identity derivation and short display fingerprints (DeriveIdentity,
//     Fingerprint)
//
// # Notes
//
// Curve and digests are fixed. Identities are base64(SHA-256(SPKI)) so the
// same public key yields the same identity in every implementation.
// Signatures use the fixed-width r||s layout (IEEE P1363) rather than ASN.1,
// which is what WebCrypto produces and consumes.
package crypto
