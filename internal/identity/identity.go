// Package identity is the sign-in service the dashboard delegates to. It owns
// accounts, sessions and password resets and tells subscribers whenever the
// signed-in identity of a session changes.
package identity

import (
	"context"
	"time"
)

// Identity is an authenticated session as seen by callers.
type Identity struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	SessionID string    `json:"sessionId"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ChangeKind int

const (
	SignedIn ChangeKind = iota + 1
	SignedOut
	// Restored is emitted the first time this process sees a session that was
	// issued before it started, or by another instance.
	Restored
)

func (k ChangeKind) String() string {
	switch k {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	case Restored:
		return "restored"
	default:
		return "unknown"
	}
}

type Change struct {
	Kind     ChangeKind
	Identity Identity
}

// Listener is called synchronously, in emission order, outside any lock held
// by the provider. It may call back into the provider.
type Listener func(ctx context.Context, change Change)

type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context, id Identity) error
	// Verify resolves a session token presented by a client.
	Verify(ctx context.Context, token string) (Identity, error)
	ChangePassword(ctx context.Context, id Identity, newPassword string) error
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	// RevokeSessions signs out every live session of uid.
	RevokeSessions(ctx context.Context, uid string) error
	OnIdentityChanged(fn Listener) (unsubscribe func())
}

// ResetMessage is what a Mailer delivers to the account owner.
type ResetMessage struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Mailer interface {
	SendReset(ctx context.Context, msg ResetMessage) error
}
