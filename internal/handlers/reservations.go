package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carrete-admin/internal/reservations"
)

func ListReservations(svc *reservations.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/reservations"
		defer handlePanic(c, route)

		ranking, err := fetch(c, timeout, func(ctx context.Context) ([]reservations.Customer, error) {
			return svc.Ranking(ctx)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"customers": ranking})
	}
}
