// Package session registers users, logs them in and tracks the current
// session on top of a domain.CredentialStore.
//
// Registration creates a fresh identity and a self-attestation over the
// user's name and email. Login restores the stored key material and, unless
// disabled, re-verifies that attestation before the session is switched.
package session
