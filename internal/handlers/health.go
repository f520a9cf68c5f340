package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrete-admin/internal/store"
)

func Health(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"

		if err := ensureStore(c.Request.Context(), st); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
