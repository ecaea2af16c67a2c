package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"sigil/internal/domain"
	"sigil/internal/util/memzero"
)

const (
	// The current supported version of the sealed slot format stored on disk.
	envelopeFormatVersion = 1
	envelopeSaltBytes     = 16
)

// ErrWrongPassphrase is returned when the passphrase is incorrect or a sealed
// slot has been modified.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted credential file")

// envelope is the on-disk JSON structure holding a sealed slot and its KDF
// parameters.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// sealer encrypts slot contents under a passphrase-derived key.
type sealer struct {
	passphrase []byte
	n, r, p    int
}

func newSealer(passphrase string) *sealer {
	n, r, p := scryptParamsDefault()
	return &sealer{passphrase: []byte(passphrase), n: n, r: r, p: p}
}

// seal encrypts raw for slot. The slot name is bound as associated data so
// sealed files cannot be swapped with each other.
func (s *sealer) seal(slot string, raw []byte) ([]byte, error) {
	salt := make([]byte, envelopeSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedEnvironment, err)
	}
	aead, err := s.aead(salt, s.n, s.r, s.p)
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, associatedData(slot, salt))

	return json.Marshal(envelope{
		V:      envelopeFormatVersion,
		Salt:   salt,
		N:      s.n,
		R:      s.r,
		P:      s.p,
		Cipher: ct,
	})
}

// open decrypts a sealed slot.
func (s *sealer) open(slot string, b []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: not a sealed file: %v", domain.ErrCorruptStore, slot, err)
	}
	if env.V != envelopeFormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported envelope version %d", domain.ErrCorruptStore, slot, env.V)
	}
	aead, err := s.aead(env.Salt, env.N, env.R, env.P)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptStore, slot, err)
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, associatedData(slot, env.Salt))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorruptStore, slot, ErrWrongPassphrase)
	}
	return pt, nil
}

func (s *sealer) aead(salt []byte, n, r, p int) (cipher.AEAD, error) {
	if len(salt) != envelopeSaltBytes {
		return nil, errors.New("invalid salt size")
	}
	key, err := scrypt.Key(s.passphrase, salt, n, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	return chacha20poly1305.New(key)
}

func associatedData(slot string, salt []byte) []byte {
	ad := make([]byte, 0, len(slot)+1+len(salt))
	ad = append(ad, slot...)
	ad = append(ad, 0)
	return append(ad, salt...)
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
