package types

// Credential is the durable record of a registered user.
//
// PublicKey and PrivateKey carry base64 SPKI and PKCS#8 text. PrivateKey is as
// sensitive as the key itself.
type Credential struct {
	ID         IdentityID `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Signature  string     `json:"signature"`
	PublicKey  string     `json:"publicKey"`
	PrivateKey string     `json:"privateKey"`
}

// Attestation is the payload a credential signs at registration. Field order
// is part of the signed bytes.
type Attestation struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Attestation returns the name/email pair the record asserts.
func (c Credential) Attestation() Attestation {
	return Attestation{Name: c.Name, Email: c.Email}
}

// Redacted returns a copy of c without private key material, for display.
func (c Credential) Redacted() Credential {
	c.PrivateKey = ""
	return c
}
