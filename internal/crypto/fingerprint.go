package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"sigil/internal/domain"
)

// DeriveIdentity returns base64(SHA-256(SPKI(pub))).
func DeriveIdentity(pub PublicKey) domain.IdentityID {
	sum := sha256.Sum256(pub.spki)
	return domain.IdentityID(EncodeBinary(sum[:]))
}

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes the SPKI with SHA-256 and truncates to 10 bytes (20 hex chars).
// It is for display only; DeriveIdentity is the stable identifier.
func Fingerprint(pub PublicKey) domain.Fingerprint {
	sum := sha256.Sum256(pub.spki)
	return domain.Fingerprint(hex.EncodeToString(sum[:10]))
}
