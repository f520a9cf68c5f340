package handlers

import (
	"errors"
	"strconv"
)

var errInvalidPagination = errors.New("page and limit must be positive integers")

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// parsePaginationParams returns nil when neither parameter is present, which
// means the whole list is returned.
func parsePaginationParams(pageStr, limitStr string) (*pagination, error) {
	if pageStr == "" && limitStr == "" {
		return nil, nil
	}

	p := &pagination{Page: 1, Limit: 20}

	if pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return nil, errInvalidPagination
		}
		p.Page = page
	}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return nil, errInvalidPagination
		}
		if limit > 200 {
			limit = 200
		}
		p.Limit = limit
	}

	return p, nil
}

func paginate[T any](items []T, p *pagination) []T {
	if p == nil {
		return items
	}
	// Compare page counts so a huge page number cannot overflow the offset.
	if p.Page-1 >= (len(items)+p.Limit-1)/p.Limit {
		return []T{}
	}
	start := (p.Page - 1) * p.Limit
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
