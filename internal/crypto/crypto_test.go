package crypto_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"sigil/internal/crypto"
	"sigil/internal/domain"
)

func newPair(t *testing.T) (crypto.PrivateKey, crypto.PublicKey) {
	t.Helper()
	priv, pub, err := crypto.GenerateP384()
	require.NoError(t, err)
	return priv, pub
}

func TestEncodeBinary_AllByteValues(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	text := crypto.EncodeBinary(all)
	require.NotContains(t, text, "\n")

	got, err := crypto.DecodeBinary(text)
	require.NoError(t, err)
	require.Equal(t, all, got)
}

func TestDecodeBinary_Malformed(t *testing.T) {
	for _, in := range []string{"@@@@", "abc", "YQ", "YR==", "YQ==\n", "Y Q=="} {
		_, err := crypto.DecodeBinary(in)
		require.ErrorIs(t, err, domain.ErrMalformedEncoding, "input %q", in)
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	priv, pub := newPair(t)
	for _, msg := range []string{"", "hello", `{"name":"alice","email":"a@x.com"}`, "héllo wörld ✓"} {
		sig, err := crypto.Sign(priv, []byte(msg))
		require.NoError(t, err)
		require.Len(t, sig, crypto.SignatureBytes)
		require.True(t, crypto.Verify(pub, []byte(msg), sig), "msg %q", msg)
		require.False(t, crypto.Verify(pub, []byte(msg+"x"), sig))
	}
}

func TestSign_IsRandomizedButBothVerify(t *testing.T) {
	priv, pub := newPair(t)
	msg := []byte("same message")
	a, err := crypto.Sign(priv, msg)
	require.NoError(t, err)
	b, err := crypto.Sign(priv, msg)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.True(t, crypto.Verify(pub, msg, a))
	require.True(t, crypto.Verify(pub, msg, b))
}

func TestVerify_CrossKeyRejected(t *testing.T) {
	priv1, _ := newPair(t)
	_, pub2 := newPair(t)
	sig, err := crypto.Sign(priv1, []byte("m"))
	require.NoError(t, err)
	require.False(t, crypto.Verify(pub2, []byte("m"), sig))
}

func TestVerify_TamperedSignatureRejected(t *testing.T) {
	priv, pub := newPair(t)
	msg := []byte("tamper me")
	sig, err := crypto.Sign(priv, msg)
	require.NoError(t, err)

	for _, i := range []int{0, 17, 47, 48, 80, 95} {
		bad := append([]byte(nil), sig...)
		bad[i] ^= 0x01
		require.False(t, crypto.Verify(pub, msg, bad), "flipped byte %d", i)
	}
}

func TestVerify_StructurallyInvalid(t *testing.T) {
	_, pub := newPair(t)
	require.False(t, crypto.Verify(pub, []byte("m"), nil))
	require.False(t, crypto.Verify(pub, []byte("m"), make([]byte, crypto.SignatureBytes-1)))
	require.False(t, crypto.Verify(pub, []byte("m"), make([]byte, crypto.SignatureBytes)))
	require.False(t, crypto.Verify(crypto.PublicKey{}, []byte("m"), make([]byte, crypto.SignatureBytes)))
}

func TestSign_ZeroKey(t *testing.T) {
	_, err := crypto.Sign(crypto.PrivateKey{}, []byte("m"))
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)
}

func TestDeriveIdentity_Deterministic(t *testing.T) {
	_, pub := newPair(t)
	id1 := crypto.DeriveIdentity(pub)
	id2 := crypto.DeriveIdentity(pub)
	require.Equal(t, id1, id2)

	raw, err := base64.StdEncoding.DecodeString(id1.String())
	require.NoError(t, err)
	require.Len(t, raw, 32)

	reimported, err := crypto.ImportPublicKey(crypto.ExportPublicKey(pub))
	require.NoError(t, err)
	require.Equal(t, id1, crypto.DeriveIdentity(reimported))
}

func TestDeriveIdentity_DistinctAcrossGenerations(t *testing.T) {
	n := 1000
	if testing.Short() {
		n = 50
	}
	seen := make(map[domain.IdentityID]struct{}, n)
	for i := 0; i < n; i++ {
		_, pub := newPair(t)
		seen[crypto.DeriveIdentity(pub)] = struct{}{}
	}
	require.Len(t, seen, n)
}

func TestFingerprint_Short(t *testing.T) {
	_, pub := newPair(t)
	fp := crypto.Fingerprint(pub)
	require.Len(t, fp.String(), 20)
	require.Equal(t, fp, crypto.Fingerprint(pub))
}

func TestPublicKey_RoundTripVerifiesSameSignatures(t *testing.T) {
	priv, pub := newPair(t)
	msg := []byte("round trip")
	sig, err := crypto.Sign(priv, msg)
	require.NoError(t, err)

	imported, err := crypto.ImportPublicKey(crypto.ExportPublicKey(pub))
	require.NoError(t, err)
	require.True(t, imported.Equal(pub))
	require.True(t, crypto.Verify(imported, msg, sig))
}

func TestPrivateKey_RoundTripSignsForSamePublicKey(t *testing.T) {
	priv, pub := newPair(t)
	text, err := crypto.ExportPrivateKey(priv)
	require.NoError(t, err)

	imported, err := crypto.ImportPrivateKey(text)
	require.NoError(t, err)
	require.True(t, imported.Public().Equal(pub))

	sig, err := crypto.Sign(imported, []byte("after import"))
	require.NoError(t, err)
	require.True(t, crypto.Verify(pub, []byte("after import"), sig))
}

func TestImport_RejectsWrongCurve(t *testing.T) {
	sk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	spki, err := x509.MarshalPKIXPublicKey(&sk.PublicKey)
	require.NoError(t, err)
	_, err = crypto.ImportPublicKey(base64.StdEncoding.EncodeToString(spki))
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(sk)
	require.NoError(t, err)
	_, err = crypto.ImportPrivateKey(base64.StdEncoding.EncodeToString(pkcs8))
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)
}

func TestImport_RejectsWrongAlgorithm(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	spki, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	_, err = crypto.ImportPublicKey(base64.StdEncoding.EncodeToString(spki))
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)

	pkcs8, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	_, err = crypto.ImportPrivateKey(base64.StdEncoding.EncodeToString(pkcs8))
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)
}

func TestImport_MixedUpFormats(t *testing.T) {
	priv, pub := newPair(t)
	privText, err := crypto.ExportPrivateKey(priv)
	require.NoError(t, err)

	_, err = crypto.ImportPublicKey(privText)
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)
	_, err = crypto.ImportPrivateKey(crypto.ExportPublicKey(pub))
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)
}

func TestImport_GarbageAndMalformed(t *testing.T) {
	_, err := crypto.ImportPublicKey("not base64!")
	require.ErrorIs(t, err, domain.ErrMalformedEncoding)
	_, err = crypto.ImportPrivateKey("not base64!")
	require.ErrorIs(t, err, domain.ErrMalformedEncoding)

	garbage := base64.StdEncoding.EncodeToString([]byte("definitely not DER"))
	_, err = crypto.ImportPublicKey(garbage)
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)
	_, err = crypto.ImportPrivateKey(garbage)
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)

	_, err = crypto.ImportPublicKey("")
	require.ErrorIs(t, err, domain.ErrInvalidKeyMaterial)
}
