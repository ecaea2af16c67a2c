package domain

import (
	interfaces "sigil/internal/domain/interfaces"
	types "sigil/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	IdentityID  = types.IdentityID
	Fingerprint = types.Fingerprint
	Credential  = types.Credential
	Attestation = types.Attestation
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Signer          = interfaces.Signer
	Verifier        = interfaces.Verifier
	SessionService  = interfaces.SessionService
	CredentialStore = interfaces.CredentialStore
	StoreLocker     = interfaces.StoreLocker
)
