// Package server assembles the HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carrete-admin/internal/admins"
	"carrete-admin/internal/auth"
	"carrete-admin/internal/handlers"
	"carrete-admin/internal/identity"
	"carrete-admin/internal/logging"
	"carrete-admin/internal/middleware"
	"carrete-admin/internal/orders"
	"carrete-admin/internal/reservations"
	"carrete-admin/internal/store"
)

type Deps struct {
	Store               store.Store
	Identity            identity.Provider
	Sessions            *auth.Manager
	Admins              *admins.Service
	Orders              *orders.Service
	Reservations        *reservations.Service
	Logger              *zap.Logger
	RequestTimeout      time.Duration
	RegistrationEnabled bool
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(logging.Middleware(d.Logger), gin.Recovery())

	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r.GET("/healthz", handlers.Health(d.Store))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.AdminLogin(d.Sessions, timeout))
		authGroup.POST("/register", handlers.AdminRegister(d.Sessions, d.RegistrationEnabled, timeout))
		authGroup.POST("/reset-password", handlers.RequestPasswordReset(d.Identity, timeout))
		authGroup.POST("/reset-password/confirm", handlers.ConfirmPasswordReset(d.Identity, timeout))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(d.Sessions, timeout))
	{
		admin.GET("/me", handlers.AdminMe())
		admin.POST("/logout", handlers.AdminLogout(d.Sessions, timeout))

		admin.GET("/orders", handlers.ListOrders(d.Orders, timeout))
		admin.GET("/orders/:id", handlers.GetOrder(d.Orders, timeout))

		admin.GET("/reservations", handlers.ListReservations(d.Reservations, timeout))

		admin.GET("/profile", handlers.GetProfile(d.Admins, timeout))
		admin.PUT("/profile", handlers.UpdateProfile(d.Admins, d.Sessions, timeout))

		admin.GET("/admins", handlers.ListAdmins(d.Admins, timeout))
		admin.DELETE("/admins/:id", handlers.DeleteAdmin(d.Admins, d.Sessions, timeout))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}
