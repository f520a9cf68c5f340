package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carrete-admin/internal/auth"
	"carrete-admin/internal/identity"
	"carrete-admin/internal/middleware"
)

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

func sessionResponse(session auth.Session) gin.H {
	return gin.H{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"session":   session,
	}
}

func AdminLogin(sessions *auth.Manager, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req AdminLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		session, err := fetch(c, timeout, func(ctx context.Context) (auth.Session, error) {
			return sessions.SignIn(ctx, req.Email, req.Password)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse(session))
	}
}

func AdminRegister(sessions *auth.Manager, enabled bool, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		if !enabled {
			respondWithError(c, http.StatusForbidden, route, "El registro de administradores está deshabilitado")
			return
		}

		var req auth.Registration
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		session, err := fetch(c, timeout, func(ctx context.Context) (auth.Session, error) {
			return sessions.Register(ctx, req)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, sessionResponse(session))
	}
}

func RequestPasswordReset(provider identity.Provider, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/reset-password"
		defer handlePanic(c, route)

		var req PasswordResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		_, err := fetch(c, timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, provider.SendPasswordReset(ctx, req.Email)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Si el correo está registrado, recibirás un enlace para restablecer tu contraseña"})
	}
}

func ConfirmPasswordReset(provider identity.Provider, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/reset-password/confirm"
		defer handlePanic(c, route)

		var req PasswordResetConfirmRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		_, err := fetch(c, timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, provider.ConfirmPasswordReset(ctx, req.Token, req.NewPassword)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Contraseña actualizada"})
	}
}

func AdminMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.CurrentSession(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func AdminLogout(sessions *auth.Manager, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/logout"
		defer handlePanic(c, route)

		session, ok := middleware.CurrentSession(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		_, err := fetch(c, timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, sessions.SignOut(ctx, session)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
	}
}
