package product

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Query holds the optional search filters and the page to return.
// Nil bounds are not applied.
type Query struct {
	Name     string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

type Page struct {
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

// ParseQuery reads name, minPrice, maxPrice, page and limit. Values that do
// not parse are treated as absent; page and limit below 1 fall back to
// their defaults.
func ParseQuery(v url.Values) Query {
	return Query{
		Name:     strings.TrimSpace(v.Get("name")),
		MinPrice: parseFloat(v.Get("minPrice")),
		MaxPrice: parseFloat(v.Get("maxPrice")),
		Page:     parsePositive(v.Get("page"), defaultPage),
		Limit:    parsePositive(v.Get("limit"), defaultLimit),
	}
}

// Search filters products and cuts out the requested page. Total counts
// every match before pagination.
func Search(products []Product, q Query) Page {
	needle := strings.ToLower(q.Name)

	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if q.MinPrice != nil && p.Price < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && p.Price > *q.MaxPrice {
			continue
		}
		matched = append(matched, p)
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}

	start, end := bounds(page, limit, len(matched))
	return Page{
		Page:     page,
		Limit:    limit,
		Total:    len(matched),
		Products: matched[start:end],
	}
}

func bounds(page, limit, n int) (start, end int) {
	start = (page - 1) * limit
	if start > n || start < 0 {
		return n, n
	}
	end = start + limit
	if end > n || end < start {
		end = n
	}
	return start, end
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
