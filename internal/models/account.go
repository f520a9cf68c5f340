package models

import "time"

// Account is a sign-in identity. It lives in the identity service's own
// collection and carries no dashboard data.
type Account struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (a Account) Fields() map[string]any {
	return map[string]any{
		"email":        a.Email,
		"passwordHash": a.PasswordHash,
		"createdAt":    a.CreatedAt,
		"updatedAt":    a.UpdatedAt,
	}
}
