package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/logging"
	"carrete-admin/internal/store"
	"carrete-admin/internal/view"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logging.FromGin(c).Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureStore(ctx context.Context, st store.Store) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return st.Ping(checkCtx)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	logging.FromGin(c).Warn("returning error",
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("message", message),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondAppError maps a service error to its status and user-facing message.
// A discarded fetch means the client is gone, so nothing is written.
func respondAppError(c *gin.Context, route string, err error) {
	if errors.Is(err, view.ErrDiscarded) {
		logging.FromGin(c).Debug("response discarded", zap.String("route", route))
		c.Abort()
		return
	}

	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.FromGin(c).Error("request failed",
			zap.String("route", route),
			zap.String("kind", apperr.KindOf(err).String()),
			zap.Error(err),
		)
	}
	respondWithError(c, status, route, apperr.Message(err))
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "email":
				details = append(details, fmt.Sprintf("%s must be an email address", field))
			case "min":
				details = append(details, fmt.Sprintf("%s must be at least %s characters", field, fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// fetch runs a store-backed call under the request's view scope with the
// configured timeout.
func fetch[T any](c *gin.Context, timeout time.Duration, call func(ctx context.Context) (T, error)) (T, error) {
	scope := view.NewScope(c.Request.Context())
	defer scope.Close()

	return view.Await(scope, func(ctx context.Context) (T, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return call(ctx)
	})
}
