package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode"

	"sigil/internal/crypto"
	"sigil/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Generator produces a fresh private key. The default is crypto.GenerateP384.
type Generator func() (crypto.PrivateKey, error)

func defaultGenerator() (crypto.PrivateKey, error) {
	priv, _, err := crypto.GenerateP384()
	return priv, err
}

// Service performs all cryptographic operations on identities.
//
// Curve P-384 with SHA-384 signatures and SHA-256 identities are fixed.
type Service struct {
	generate Generator
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator replaces the key generator, e.g. to replay a known key in tests.
func WithGenerator(g Generator) Option {
	return func(s *Service) { s.generate = g }
}

// New returns an identity service.
func New(opts ...Option) *Service {
	s := &Service{generate: defaultGenerator}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateKeypair creates a new P-384 key pair.
func (s *Service) GenerateKeypair() (*KeyPair, error) {
	priv, err := s.generate()
	if err != nil {
		return nil, err
	}
	if priv.IsZero() {
		return nil, fmt.Errorf("%w: generator returned no key", domain.ErrUnsupportedEnvironment)
	}
	return newKeyPair(priv), nil
}

// DeriveIdentity returns base64(SHA-256(SPKI(pub))).
func (s *Service) DeriveIdentity(pub crypto.PublicKey) domain.IdentityID {
	return crypto.DeriveIdentity(pub)
}

// Sign returns a base64 signature over the UTF-8 bytes of message.
func (s *Service) Sign(priv crypto.PrivateKey, message string) (string, error) {
	sig, err := crypto.Sign(priv, []byte(message))
	if err != nil {
		return "", err
	}
	return crypto.EncodeBinary(sig), nil
}

// Verify checks signature against message under pub. It never fails; a
// structurally invalid signature yields false.
func (s *Service) Verify(pub crypto.PublicKey, message, signature string) bool {
	return verify(pub, message, signature)
}

// Attest signs the canonical {name, email} payload with kp and assembles the
// resulting credential.
func (s *Service) Attest(kp *KeyPair, name, email string) (domain.Credential, error) {
	payload, err := CanonicalAttestation(domain.Attestation{Name: name, Email: email})
	if err != nil {
		return domain.Credential{}, err
	}
	sig, err := kp.Sign(string(payload))
	if err != nil {
		return domain.Credential{}, err
	}
	publicText, privateText, err := kp.Export()
	if err != nil {
		return domain.Credential{}, err
	}
	return domain.Credential{
		ID:         kp.ID(),
		Name:       name,
		Email:      email,
		Signature:  sig,
		PublicKey:  publicText,
		PrivateKey: privateText,
	}, nil
}

// Restore imports the key material of cred and checks that both halves belong
// to one pair whose identity matches cred.ID.
func (s *Service) Restore(cred domain.Credential) (*KeyPair, error) {
	pub, err := crypto.ImportPublicKey(cred.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("public key of %q: %w", cred.Name, err)
	}
	priv, err := crypto.ImportPrivateKey(cred.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("private key of %q: %w", cred.Name, err)
	}
	if !priv.Public().Equal(pub) {
		return nil, fmt.Errorf("%w: key pair mismatch for %q", domain.ErrInvalidKeyMaterial, cred.Name)
	}
	kp := newKeyPair(priv)
	if kp.ID() != cred.ID {
		return nil, fmt.Errorf("%w: identity mismatch for %q", domain.ErrInvalidKeyMaterial, cred.Name)
	}
	return kp, nil
}

// CheckAttestation verifies the stored self-attestation of cred with v.
func (s *Service) CheckAttestation(cred domain.Credential, v domain.Verifier) error {
	payload, err := CanonicalAttestation(cred.Attestation())
	if err != nil {
		return err
	}
	if !v.Verify(string(payload), cred.Signature) {
		return fmt.Errorf("%w: attestation signature of %q does not verify", domain.ErrInvalidKeyMaterial, cred.Name)
	}
	return nil
}

// CanonicalAttestation encodes a as compact UTF-8 JSON with keys in the order
// name, email and without HTML escaping.
func CanonicalAttestation(a domain.Attestation) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// CheckPassphrase enforces a basic strength policy for sealing passphrases.
func CheckPassphrase(passphrase string) error {
	if !isSecurePassphrase(passphrase) {
		return ErrWeakPassphrase
	}
	return nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len([]rune(passphrase)) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}
