package models

import "time"

// IdentitySession backs one issued session token. Revoking it invalidates the
// token even before it expires.
type IdentitySession struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UID       string    `bson:"uid" json:"uid"`
	Email     string    `bson:"email" json:"email"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	Revoked   bool      `bson:"revoked" json:"revoked"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (s IdentitySession) Fields() map[string]any {
	return map[string]any{
		"uid":       s.UID,
		"email":     s.Email,
		"expiresAt": s.ExpiresAt,
		"revoked":   s.Revoked,
		"createdAt": s.CreatedAt,
	}
}

// PasswordReset is keyed by the SHA-256 of the token mailed to the user.
type PasswordReset struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	UID       string    `bson:"uid" json:"uid"`
	Email     string    `bson:"email" json:"email"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	Used      bool      `bson:"used" json:"used"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

func (p PasswordReset) Fields() map[string]any {
	return map[string]any{
		"uid":       p.UID,
		"email":     p.Email,
		"expiresAt": p.ExpiresAt,
		"used":      p.Used,
		"createdAt": p.CreatedAt,
	}
}
