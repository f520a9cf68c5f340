package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carrete-admin/internal/admins"
	"carrete-admin/internal/apperr"
	"carrete-admin/internal/auth"
	"carrete-admin/internal/identity"
	"carrete-admin/internal/middleware"
	"carrete-admin/internal/models"
)

type UpdateProfileRequest struct {
	admins.ProfileUpdate
	NewPassword string `json:"newPassword"`
}

func GetProfile(directory *admins.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/profile"
		defer handlePanic(c, route)

		session, ok := middleware.CurrentSession(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		profile, err := fetch(c, timeout, func(ctx context.Context) (models.Admin, error) {
			return directory.GetByID(ctx, session.UID)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateProfile saves the editable fields and, when newPassword is set,
// changes the password of the signed-in identity.
func UpdateProfile(directory *admins.Service, sessions *auth.Manager, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/profile"
		defer handlePanic(c, route)

		session, ok := middleware.CurrentSession(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.NewPassword != "" && len(req.NewPassword) < identity.MinPasswordLength {
			respondAppError(c, route, apperr.Validation("La contraseña debe tener al menos 6 caracteres"))
			return
		}

		profile, err := fetch(c, timeout, func(ctx context.Context) (models.Admin, error) {
			updated, err := directory.UpdateProfile(ctx, session.UID, req.ProfileUpdate)
			if err != nil {
				return models.Admin{}, err
			}
			if req.NewPassword != "" {
				if err := sessions.ChangePassword(ctx, session, req.NewPassword); err != nil {
					return models.Admin{}, err
				}
			}
			return updated, nil
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
