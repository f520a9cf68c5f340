package models

// Customer is a document of the "users" collection, written by the customer
// app. The customer id used by invoices is the userId field, not the
// document id.
type Customer struct {
	DocID    string        `bson:"_id,omitempty" json:"-"`
	UserID   string        `bson:"userId" json:"id"`
	Email    string        `bson:"email" json:"email"`
	Username string        `bson:"username,omitempty" json:"name,omitempty"`
	Telefono LenientString `bson:"telefono,omitempty" json:"phone,omitempty"`
}

// Key returns the id invoices refer to, falling back to the document id for
// customers written without a userId field.
func (c Customer) Key() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.DocID
}
