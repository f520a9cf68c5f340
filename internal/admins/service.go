// Package admins manages the "admin" collection. A document there keyed by an
// identity uid is what makes that identity an administrator.
package admins

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/models"
	"carrete-admin/internal/store"
)

// DefaultProfileURL is stored when an admin registers without a picture.
const DefaultProfileURL = "defaultProfileUrl"

const (
	msgNotFound   = "Administrador no encontrado"
	msgLoadFailed = "Error al cargar los administradores"
	msgSaveFailed = "Error al guardar el administrador"
)

type Service struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(st store.Store, log *zap.Logger) *Service {
	return &Service{store: st, log: log, now: time.Now}
}

// List returns every admin, newest first. Admins whose createdAt does not
// parse go last, keeping their stored order.
func (s *Service) List(ctx context.Context) ([]models.Admin, error) {
	records, err := s.store.All(ctx, store.CollAdmin)
	if err != nil {
		s.log.Error("list admins failed", zap.Error(err))
		return nil, apperr.Load(msgLoadFailed, err)
	}

	list := make([]models.Admin, 0, len(records))
	created := make(map[string]time.Time, len(records))
	for _, rec := range records {
		var admin models.Admin
		if err := rec.Decode(&admin); err != nil {
			s.log.Warn("skipping undecodable admin", zap.String("id", rec.ID), zap.Error(err))
			continue
		}
		if ts, err := time.Parse(time.RFC3339, admin.CreatedAt); err == nil {
			created[admin.ID] = ts
		}
		list = append(list, admin)
	}

	sort.SliceStable(list, func(i, j int) bool {
		ti, okI := created[list[i].ID]
		tj, okJ := created[list[j].ID]
		switch {
		case okI && okJ:
			return ti.After(tj)
		default:
			return okI && !okJ
		}
	})
	return list, nil
}

// GetByID returns the admin document keyed by uid. This is the lookup that
// decides admin access; no other field is consulted.
func (s *Service) GetByID(ctx context.Context, uid string) (models.Admin, error) {
	if strings.TrimSpace(uid) == "" {
		return models.Admin{}, apperr.NotFound(msgNotFound, store.ErrNotFound)
	}

	rec, err := s.store.Get(ctx, store.CollAdmin, uid)
	if errors.Is(err, store.ErrNotFound) {
		return models.Admin{}, apperr.NotFound(msgNotFound, err)
	}
	if err != nil {
		return models.Admin{}, apperr.Load(msgLoadFailed, err)
	}
	return decodeAdmin(rec)
}

// Get looks the admin up by document id and falls back to the userId field
// for documents created under a different id. Only admin management uses it.
func (s *Service) Get(ctx context.Context, id string) (models.Admin, error) {
	admin, err := s.GetByID(ctx, id)
	if !errors.Is(err, apperr.ErrNotFound) || strings.TrimSpace(id) == "" {
		return admin, err
	}

	matches, err := s.store.Where(ctx, store.CollAdmin, "userId", id)
	if err != nil {
		return models.Admin{}, apperr.Load(msgLoadFailed, err)
	}
	if len(matches) == 0 {
		return models.Admin{}, apperr.NotFound(msgNotFound, store.ErrNotFound)
	}
	return decodeAdmin(matches[0])
}

func decodeAdmin(rec store.Record) (models.Admin, error) {
	var admin models.Admin
	if err := rec.Decode(&admin); err != nil {
		return models.Admin{}, apperr.Load(msgLoadFailed, err)
	}
	return admin, nil
}

func (s *Service) Create(ctx context.Context, admin models.Admin) (models.Admin, error) {
	if admin.ID == "" {
		return models.Admin{}, apperr.Validation("Falta el identificador del administrador")
	}
	if admin.UserID == "" {
		admin.UserID = admin.ID
	}
	if strings.TrimSpace(admin.ProfileURL) == "" {
		admin.ProfileURL = DefaultProfileURL
	}
	if admin.CreatedAt == "" {
		admin.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}

	if err := s.store.Set(ctx, store.CollAdmin, admin.ID, admin.Fields()); err != nil {
		return models.Admin{}, apperr.Load(msgSaveFailed, err)
	}
	s.log.Info("admin created", zap.String("uid", admin.ID), zap.String("email", admin.Email))
	return admin, nil
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// untouched.
type ProfileUpdate struct {
	Username   *string `json:"username"`
	Telefono   *string `json:"telefono"`
	ProfileURL *string `json:"profileUrl"`
}

func (u ProfileUpdate) fields() map[string]any {
	fields := map[string]any{}
	if u.Username != nil {
		fields["username"] = strings.TrimSpace(*u.Username)
	}
	if u.Telefono != nil {
		fields["telefono"] = strings.TrimSpace(*u.Telefono)
	}
	if u.ProfileURL != nil {
		fields["profileUrl"] = strings.TrimSpace(*u.ProfileURL)
	}
	return fields
}

func (s *Service) UpdateProfile(ctx context.Context, uid string, update ProfileUpdate) (models.Admin, error) {
	current, err := s.GetByID(ctx, uid)
	if err != nil {
		return models.Admin{}, err
	}

	fields := update.fields()
	if len(fields) > 0 {
		err := s.store.Update(ctx, store.CollAdmin, current.ID, fields)
		if errors.Is(err, store.ErrNotFound) {
			return models.Admin{}, apperr.NotFound(msgNotFound, err)
		}
		if err != nil {
			return models.Admin{}, apperr.Load(msgSaveFailed, err)
		}
	}
	return s.GetByID(ctx, current.ID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, store.CollAdmin, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgNotFound, err)
	}
	if err != nil {
		return apperr.Load("Error al eliminar el administrador", err)
	}
	s.log.Info("admin deleted", zap.String("id", id))
	return nil
}
