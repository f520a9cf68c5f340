// Package reservations ranks customers by how many invoices reference them.
package reservations

import (
	"sort"

	"carrete-admin/internal/models"
	"carrete-admin/internal/orders"
)

type Customer struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	Phone            string `json:"phone,omitempty"`
	ReservationCount int    `json:"reservationCount"`
}

func FromModel(m models.Customer) Customer {
	return Customer{
		ID:    m.Key(),
		Email: m.Email,
		Name:  m.Username,
		Phone: m.Telefono.String(),
	}
}

// Aggregate counts the orders of every known customer and returns those with
// at least one, highest count first. Orders whose userId is empty or unknown
// are ignored. The order among equal counts is unspecified.
//
// A customer id listed twice keeps the fields of its last occurrence.
func Aggregate(customers []Customer, all []orders.Order) []Customer {
	byID := make(map[string]*Customer, len(customers))
	keys := make([]string, 0, len(customers))
	for _, c := range customers {
		if c.ID == "" {
			continue
		}
		c.ReservationCount = 0
		if _, seen := byID[c.ID]; !seen {
			keys = append(keys, c.ID)
		}
		entry := c
		byID[c.ID] = &entry
	}

	for _, o := range all {
		if o.UserID == "" {
			continue
		}
		if entry, ok := byID[o.UserID]; ok {
			entry.ReservationCount++
		}
	}

	out := make([]Customer, 0, len(keys))
	for _, key := range keys {
		if entry := byID[key]; entry.ReservationCount > 0 {
			out = append(out, *entry)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ReservationCount > out[j].ReservationCount
	})
	return out
}
