// Package identity is the cryptographic core behind sigil credentials.
//
// It generates ECDSA P-384 key pairs, derives identities, signs and verifies
// messages, builds the self-attestation carried by every credential, and
// restores key pairs from stored credentials. It also enforces the passphrase
// policy for sealed storage.
package identity
