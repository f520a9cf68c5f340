package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carrete-admin/internal/admins"
	"carrete-admin/internal/auth"
	"carrete-admin/internal/models"
)

func ListAdmins(directory *admins.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/admins"
		defer handlePanic(c, route)

		list, err := fetch(c, timeout, func(ctx context.Context) ([]models.Admin, error) {
			return directory.List(ctx)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"admins": list})
	}
}

// DeleteAdmin removes the admin document and ends the removed admin's live
// sessions, so a deleted admin loses access immediately.
func DeleteAdmin(directory *admins.Service, sessions *auth.Manager, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/admins/:id"
		defer handlePanic(c, route)

		id := c.Param("id")
		_, err := fetch(c, timeout, func(ctx context.Context) (struct{}, error) {
			admin, err := directory.Get(ctx, id)
			if err != nil {
				return struct{}{}, err
			}
			if err := directory.Delete(ctx, admin.ID); err != nil {
				return struct{}{}, err
			}
			uid := admin.UserID
			if uid == "" {
				uid = admin.ID
			}
			return struct{}{}, sessions.RevokeUser(ctx, uid)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Administrador eliminado"})
	}
}
