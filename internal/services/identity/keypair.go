package identity

import (
	"sigil/internal/crypto"
	"sigil/internal/domain"
)

// KeyPair is a signing identity produced by exactly one generation or restore.
// It implements domain.Signer and domain.Verifier.
type KeyPair struct {
	priv crypto.PrivateKey
	pub  crypto.PublicKey
	id   domain.IdentityID
}

func newKeyPair(priv crypto.PrivateKey) *KeyPair {
	pub := priv.Public()
	return &KeyPair{priv: priv, pub: pub, id: crypto.DeriveIdentity(pub)}
}

// ID returns the derived identity.
func (k *KeyPair) ID() domain.IdentityID { return k.id }

// PublicKey returns the verification key handle.
func (k *KeyPair) PublicKey() crypto.PublicKey { return k.pub }

// Fingerprint returns the short display fingerprint.
func (k *KeyPair) Fingerprint() domain.Fingerprint { return crypto.Fingerprint(k.pub) }

// Sign returns a base64 signature over the UTF-8 bytes of message.
func (k *KeyPair) Sign(message string) (string, error) {
	sig, err := crypto.Sign(k.priv, []byte(message))
	if err != nil {
		return "", err
	}
	return crypto.EncodeBinary(sig), nil
}

// Verify reports whether signature is valid for message under this key.
func (k *KeyPair) Verify(message, signature string) bool {
	return verify(k.pub, message, signature)
}

// Public returns the verification-only half.
func (k *KeyPair) Public() *PublicIdentity {
	return &PublicIdentity{pub: k.pub, id: k.id}
}

// Export returns the base64 SPKI and PKCS#8 texts. privateText is secret.
func (k *KeyPair) Export() (publicText, privateText string, err error) {
	privateText, err = crypto.ExportPrivateKey(k.priv)
	if err != nil {
		return "", "", err
	}
	return crypto.ExportPublicKey(k.pub), privateText, nil
}

// PublicIdentity verifies signatures for a claimed public key.
type PublicIdentity struct {
	pub crypto.PublicKey
	id  domain.IdentityID
}

// ParsePublicIdentity imports base64 SPKI text.
func ParsePublicIdentity(publicText string) (*PublicIdentity, error) {
	pub, err := crypto.ImportPublicKey(publicText)
	if err != nil {
		return nil, err
	}
	return &PublicIdentity{pub: pub, id: crypto.DeriveIdentity(pub)}, nil
}

// ID returns the derived identity.
func (p *PublicIdentity) ID() domain.IdentityID { return p.id }

// Fingerprint returns the short display fingerprint.
func (p *PublicIdentity) Fingerprint() domain.Fingerprint { return crypto.Fingerprint(p.pub) }

// Verify reports whether signature is valid for message under this key.
func (p *PublicIdentity) Verify(message, signature string) bool {
	return verify(p.pub, message, signature)
}

func verify(pub crypto.PublicKey, message, signature string) bool {
	sig, err := crypto.DecodeBinary(signature)
	if err != nil {
		return false
	}
	return crypto.Verify(pub, []byte(message), sig)
}

// Compile-time assertions for the capability interfaces.
var (
	_ domain.Signer   = (*KeyPair)(nil)
	_ domain.Verifier = (*KeyPair)(nil)
	_ domain.Verifier = (*PublicIdentity)(nil)
)
