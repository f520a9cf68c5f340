// Package orders loads invoices from the "facturacion" collection, normalizes
// them into Order values and derives sorted and filtered views of them.
package orders

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"carrete-admin/internal/store"
)

type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

func (i Item) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order is an invoice as shown to administrators. Values are snapshots; the
// engine never mutates an Order after Normalize returns it.
type Order struct {
	ID      string  `json:"id"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	Phone   string  `json:"phone"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Items   []Item  `json:"items"`
	Total   float64 `json:"total"`
	UserID  string  `json:"userId"`

	// placedAt is the combined date and time. Zero when the date does not
	// parse, which sorts the order last.
	placedAt time.Time
}

func (o Order) PlacedAt() time.Time {
	return o.placedAt
}

// Normalize maps a raw document onto Order, substituting the documented
// default for every missing or mistyped field.
func Normalize(rec store.Record, loc *time.Location) Order {
	fields := rec.Fields
	order := Order{
		ID:      rec.ID,
		Address: asString(fields["address"]),
		City:    asString(fields["city"]),
		Phone:   asString(fields["phone"]),
		Date:    asString(fields["date"]),
		Time:    asString(fields["time"]),
		Items:   asItems(fields["items"]),
		Total:   nonNegative(fields["total"]),
		UserID:  asString(fields["userId"]),
	}
	order.placedAt = combineDateTime(order.Date, order.Time, loc)
	return order
}

func asString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func asNumber(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case primitive.Decimal128:
		parsed, err := strconv.ParseFloat(typed.String(), 64)
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func nonNegative(value any) float64 {
	number, ok := asNumber(value)
	if !ok || math.IsNaN(number) || math.IsInf(number, 0) || number < 0 {
		return 0
	}
	return number
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case bson.M:
		return typed, true
	case map[string]any:
		return typed, true
	case bson.D:
		out := make(map[string]any, len(typed))
		for _, elem := range typed {
			out[elem.Key] = elem.Value
		}
		return out, true
	default:
		return nil, false
	}
}

func asItems(value any) []Item {
	var raw []any
	switch typed := value.(type) {
	case bson.A:
		raw = typed
	case []any:
		raw = typed
	case []map[string]any:
		raw = make([]any, len(typed))
		for i := range typed {
			raw[i] = typed[i]
		}
	}

	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		fields, ok := asMap(entry)
		if !ok {
			continue
		}
		items = append(items, Item{
			Name:     asString(fields["name"]),
			Quantity: int(math.Trunc(nonNegative(fields["quantity"]))),
			Price:    nonNegative(fields["price"]),
		})
	}
	return items
}
