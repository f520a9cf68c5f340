package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carrete-admin/internal/orders"
)

type orderItemResponse struct {
	orders.Item
	Subtotal float64 `json:"subtotal"`
}

type orderDetailResponse struct {
	orders.Order
	Items    []orderItemResponse `json:"items"`
	PlacedAt *time.Time          `json:"placedAt,omitempty"`
}

func orderDetail(o orders.Order) orderDetailResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{Item: item, Subtotal: item.Subtotal()})
	}
	resp := orderDetailResponse{Order: o, Items: items}
	if placed := o.PlacedAt(); !placed.IsZero() {
		resp.PlacedAt = &placed
	}
	return resp
}

// ListOrders filters with the query parameters address, city, dateFrom,
// dateTo, totalFrom and totalTo. page and limit are optional.
func ListOrders(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		var criteria orders.Criteria
		if err := c.ShouldBindQuery(&criteria); err != nil {
			respondValidationError(c, err)
			return
		}

		page, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		listing, err := fetch(c, timeout, func(ctx context.Context) (orders.Listing, error) {
			return svc.List(ctx, criteria)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		resp := gin.H{
			"orders":   paginate(listing.Orders, page),
			"total":    listing.Total,
			"matched":  listing.Matched,
			"criteria": listing.Criteria,
		}
		if page != nil {
			resp["page"] = page.Page
			resp["limit"] = page.Limit
		}
		c.JSON(http.StatusOK, resp)
	}
}

func GetOrder(svc *orders.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id"
		defer handlePanic(c, route)

		id := c.Param("id")
		order, err := fetch(c, timeout, func(ctx context.Context) (orders.Order, error) {
			return svc.Get(ctx, id)
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, orderDetail(order))
	}
}
