package interfaces

import (
	"context"

	domaintypes "sigil/internal/domain/types"
)

// Signer produces base64 signatures over UTF-8 messages.
type Signer interface {
	Sign(message string) (string, error)
}

// Verifier checks base64 signatures. A false result is a normal outcome.
type Verifier interface {
	Verify(message, signature string) bool
	ID() domaintypes.IdentityID
}

// SessionService is the collaborator-facing register/login/session API.
type SessionService interface {
	Register(ctx context.Context, name, email string) (domaintypes.Credential, error)
	Login(ctx context.Context, name string) (domaintypes.Credential, error)
	CurrentSession(ctx context.Context) (domaintypes.Credential, error)
	SetSession(ctx context.Context, cred domaintypes.Credential) error
	Logout(ctx context.Context) error
}
