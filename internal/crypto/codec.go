package crypto

import (
	"crypto/ecdsa"
	"crypto/x509"
	"fmt"

	"sigil/internal/domain"
	"sigil/internal/util/memzero"
)

// ExportPublicKey returns the base64 SPKI encoding of pub.
func ExportPublicKey(pub PublicKey) string {
	return EncodeBinary(pub.spki)
}

// ExportPrivateKey returns the base64 PKCS#8 encoding of priv.
//
// The result is as sensitive as the key itself.
func ExportPrivateKey(priv PrivateKey) (string, error) {
	if priv.key == nil {
		return "", fmt.Errorf("%w: empty private key", domain.ErrInvalidKeyMaterial)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidKeyMaterial, err)
	}
	defer memzero.Zero(der)
	return EncodeBinary(der), nil
}

// ImportPublicKey parses base64 SPKI text into a P-384 public key.
func ImportPublicKey(text string) (PublicKey, error) {
	der, err := DecodeBinary(text)
	if err != nil {
		return PublicKey{}, err
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidKeyMaterial, err)
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return PublicKey{}, fmt.Errorf("%w: %T is not an ECDSA key", domain.ErrInvalidKeyMaterial, parsed)
	}
	return newPublicKey(pub)
}

// ImportPrivateKey parses base64 PKCS#8 text into a P-384 private key.
func ImportPrivateKey(text string) (PrivateKey, error) {
	der, err := DecodeBinary(text)
	if err != nil {
		return PrivateKey{}, err
	}
	defer memzero.Zero(der)

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidKeyMaterial, err)
	}
	priv, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return PrivateKey{}, fmt.Errorf("%w: %T is not an ECDSA key", domain.ErrInvalidKeyMaterial, parsed)
	}
	return newPrivateKey(priv)
}
