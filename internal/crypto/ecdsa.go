package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha512"
	"crypto/x509"
	"fmt"
	"io"
	"math/big"

	"sigil/internal/domain"
)

const (
	coordinateBytes = 48

	// SignatureBytes is the length of an r||s P-384 signature.
	SignatureBytes = 2 * coordinateBytes
)

// PublicKey is an opaque P-384 verification key. The zero value is unusable.
type PublicKey struct {
	key  *ecdsa.PublicKey
	spki []byte
}

// PrivateKey is an opaque P-384 signing key. The zero value is unusable.
type PrivateKey struct {
	key *ecdsa.PrivateKey
	pub PublicKey
}

// Public returns the verification half of k.
func (k PrivateKey) Public() PublicKey { return k.pub }

// IsZero reports whether k holds no key.
func (k PrivateKey) IsZero() bool { return k.key == nil }

// IsZero reports whether k holds no key.
func (k PublicKey) IsZero() bool { return k.key == nil }

// Equal reports whether k and o are the same public key.
func (k PublicKey) Equal(o PublicKey) bool {
	if k.key == nil || o.key == nil {
		return false
	}
	return k.key.Equal(o.key)
}

func newPublicKey(pub *ecdsa.PublicKey) (PublicKey, error) {
	if pub.Curve != elliptic.P384() {
		return PublicKey{}, fmt.Errorf("%w: curve %s, want P-384", domain.ErrInvalidKeyMaterial, pub.Curve.Params().Name)
	}
	spki, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidKeyMaterial, err)
	}
	return PublicKey{key: pub, spki: spki}, nil
}

func newPrivateKey(priv *ecdsa.PrivateKey) (PrivateKey, error) {
	pub, err := newPublicKey(&priv.PublicKey)
	if err != nil {
		return PrivateKey{}, err
	}
	return PrivateKey{key: priv, pub: pub}, nil
}

// GenerateP384 returns a new ECDSA P-384 key pair.
func GenerateP384() (PrivateKey, PublicKey, error) {
	return generateP384(rand.Reader)
}

func generateP384(entropy io.Reader) (PrivateKey, PublicKey, error) {
	sk, err := ecdsa.GenerateKey(elliptic.P384(), entropy)
	if err != nil {
		return PrivateKey{}, PublicKey{}, fmt.Errorf("%w: %v", domain.ErrUnsupportedEnvironment, err)
	}
	priv, err := newPrivateKey(sk)
	if err != nil {
		return PrivateKey{}, PublicKey{}, err
	}
	return priv, priv.pub, nil
}

// Sign signs the SHA-384 digest of msg with priv and returns r||s.
func Sign(priv PrivateKey, msg []byte) ([]byte, error) {
	if priv.key == nil {
		return nil, fmt.Errorf("%w: empty private key", domain.ErrInvalidKeyMaterial)
	}
	digest := sha512.Sum384(msg)
	r, s, err := ecdsa.Sign(rand.Reader, priv.key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedEnvironment, err)
	}
	sig := make([]byte, SignatureBytes)
	r.FillBytes(sig[:coordinateBytes])
	s.FillBytes(sig[coordinateBytes:])
	return sig, nil
}

// Verify verifies an r||s signature over the SHA-384 digest of msg.
func Verify(pub PublicKey, msg, sig []byte) bool {
	if pub.key == nil || len(sig) != SignatureBytes {
		return false
	}
	r := new(big.Int).SetBytes(sig[:coordinateBytes])
	s := new(big.Int).SetBytes(sig[coordinateBytes:])
	digest := sha512.Sum384(msg)
	return ecdsa.Verify(pub.key, digest[:], r, s)
}
