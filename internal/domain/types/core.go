package types

// IdentityID is the digest-derived fingerprint of a public key:
// base64(SHA-256(SPKI)). It is the uniqueness key for registered users.
type IdentityID string

// String returns the string form of the identity.
func (id IdentityID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
