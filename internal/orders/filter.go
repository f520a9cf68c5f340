package orders

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"carrete-admin/internal/store"
)

// Load normalizes every record and sorts the result most recent first. No
// record is dropped; equal instants keep their fetch order.
func Load(records []store.Record, loc *time.Location) []Order {
	orders := make([]Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, Normalize(rec, loc))
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].placedAt.After(orders[j].placedAt)
	})
	return orders
}

// Criteria is the set of optional filters. An empty field imposes no
// constraint. Bounds are inclusive.
type Criteria struct {
	Address   string `form:"address" json:"address"`
	City      string `form:"city" json:"city"`
	DateFrom  string `form:"dateFrom" json:"dateFrom"`
	DateTo    string `form:"dateTo" json:"dateTo"`
	TotalFrom string `form:"totalFrom" json:"totalFrom"`
	TotalTo   string `form:"totalTo" json:"totalTo"`
}

// Clear returns the criteria that match every order.
func Clear() Criteria {
	return Criteria{}
}

func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

type predicate func(Order) bool

func containsFold(needle string, field func(Order) string) predicate {
	lowered := strings.ToLower(needle)
	return func(o Order) bool {
		return strings.Contains(strings.ToLower(field(o)), lowered)
	}
}

func parseBoundDay(value string) (int, bool) {
	day, _, ok := parseDate(value, time.UTC)
	if !ok {
		return 0, false
	}
	return civilDay(day), true
}

func parseBoundTotal(value string) (float64, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) {
		return 0, false
	}
	return parsed, true
}

func orderDay(o Order) (int, bool) {
	loc := time.Local
	if !o.placedAt.IsZero() {
		loc = o.placedAt.Location()
	}
	day, _, ok := parseDate(o.Date, loc)
	if !ok {
		return 0, false
	}
	return civilDay(day), true
}

// predicates compiles the active fields. A bound that does not parse is
// skipped, which leaves that side unconstrained.
func (c Criteria) predicates() []predicate {
	var preds []predicate

	if c.Address != "" {
		preds = append(preds, containsFold(c.Address, func(o Order) string { return o.Address }))
	}
	if c.City != "" {
		preds = append(preds, containsFold(c.City, func(o Order) string { return o.City }))
	}
	if from, ok := parseBoundDay(c.DateFrom); ok {
		preds = append(preds, func(o Order) bool {
			day, ok := orderDay(o)
			return ok && day >= from
		})
	}
	if to, ok := parseBoundDay(c.DateTo); ok {
		preds = append(preds, func(o Order) bool {
			day, ok := orderDay(o)
			return ok && day <= to
		})
	}
	if from, ok := parseBoundTotal(c.TotalFrom); ok {
		preds = append(preds, func(o Order) bool { return o.Total >= from })
	}
	if to, ok := parseBoundTotal(c.TotalTo); ok {
		preds = append(preds, func(o Order) bool { return o.Total <= to })
	}
	return preds
}

// Apply returns the orders matching every active criterion, in input order.
// Callers pass the full sorted list, never a previous result.
func Apply(orders []Order, c Criteria) []Order {
	preds := c.predicates()

	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if matches(o, preds) {
			out = append(out, o)
		}
	}
	return out
}

func matches(o Order, preds []predicate) bool {
	for _, pred := range preds {
		if !pred(o) {
			return false
		}
	}
	return true
}
