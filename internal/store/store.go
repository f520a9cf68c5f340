// Package store is the document store contract the dashboard runs on: named
// collections of schemaless documents addressed by string ids. It has no
// transactions and no joins; callers correlate collections in memory.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// Collections used by the dashboard.
const (
	CollAdmin    = "admin"
	CollUsers    = "users"
	CollOrders   = "facturacion"
	CollAccounts = "identities"
	CollSessions = "identity_sessions"
	CollResets   = "password_resets"
)

var ErrNotFound = errors.New("document not found")

// Record is one raw document. Fields never contains the id.
type Record struct {
	ID     string
	Fields map[string]any
}

// Decode maps the record onto a bson-tagged struct. The id is exposed to the
// struct as "_id".
func (r Record) Decode(v any) error {
	doc := make(bson.M, len(r.Fields)+1)
	for key, value := range r.Fields {
		doc[key] = value
	}
	doc["_id"] = r.ID

	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, v)
}

type Store interface {
	All(ctx context.Context, collection string) ([]Record, error)
	// Where returns the documents whose field equals value.
	Where(ctx context.Context, collection, field string, value any) ([]Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	// Set creates or replaces the document.
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
}
