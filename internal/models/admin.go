package models

// Admin is a document of the "admin" collection. Its id is the identity uid;
// the document's existence is what grants access to the dashboard.
type Admin struct {
	ID         string        `bson:"_id,omitempty" json:"id"`
	UserID     string        `bson:"userId" json:"userId"`
	Email      string        `bson:"email" json:"email"`
	Username   string        `bson:"username,omitempty" json:"username,omitempty"`
	Telefono   LenientString `bson:"telefono,omitempty" json:"telefono,omitempty"`
	ProfileURL string        `bson:"profileUrl,omitempty" json:"profileUrl,omitempty"`
	CreatedAt  string        `bson:"createdAt" json:"createdAt"`
}

// Fields returns the document body as written to the store.
func (a Admin) Fields() map[string]any {
	return map[string]any{
		"userId":     a.UserID,
		"email":      a.Email,
		"username":   a.Username,
		"telefono":   string(a.Telefono),
		"profileUrl": a.ProfileURL,
		"createdAt":  a.CreatedAt,
	}
}
