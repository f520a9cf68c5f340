// Package auth decides who may use the dashboard. An identity is an admin
// when the admin collection holds a document for its uid; every identity
// change is checked against that rule before a session is served.
package auth

import (
	"context"
	"errors"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/identity"
	"carrete-admin/internal/models"
)

type AdminDirectory interface {
	// GetByID must only match the document keyed by uid.
	GetByID(ctx context.Context, uid string) (models.Admin, error)
	Create(ctx context.Context, admin models.Admin) (models.Admin, error)
}

type Role struct {
	IsAdmin bool
	Profile models.Admin
}

type Resolver struct {
	admins AdminDirectory
}

func NewResolver(admins AdminDirectory) *Resolver {
	return &Resolver{admins: admins}
}

// Resolve reports whether id is an admin. A missing admin document is a
// normal negative answer; any other lookup failure is a load error.
func (r *Resolver) Resolve(ctx context.Context, id identity.Identity) (Role, error) {
	admin, err := r.admins.GetByID(ctx, id.UID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Role{}, nil
	}
	if err != nil {
		return Role{}, apperr.Load("Error al verificar los permisos", err)
	}
	if admin.Email == "" {
		admin.Email = id.Email
	}
	return Role{IsAdmin: true, Profile: admin}, nil
}
