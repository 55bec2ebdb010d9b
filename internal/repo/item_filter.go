package repo

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sortable item fields, as accepted by the ordering query parameter.
const (
	OrderByName        = "name"
	OrderByQuantity    = "quantity"
	OrderByPrice       = "price"
	OrderByLastUpdated = "last_updated"
)

type OrderField struct {
	Field string
	Desc  bool
}

// DefaultItemOrdering puts the most recently updated items first.
var DefaultItemOrdering = []OrderField{{Field: OrderByLastUpdated, Desc: true}}

func validOrderField(f string) bool {
	switch f {
	case OrderByName, OrderByQuantity, OrderByPrice, OrderByLastUpdated:
		return true
	}
	return false
}

// ParseOrdering reads a comma separated list such as "name,-price".
// Unknown fields are dropped.
func ParseOrdering(s string) []OrderField {
	var out []OrderField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(part, "-")
		if !validOrderField(part) {
			continue
		}
		out = append(out, OrderField{Field: part, Desc: desc})
	}
	return out
}

type ItemFilter struct {
	OwnerID  int64
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	LowStock *int
	Search   string
	Ordering []OrderField
	Offset   *int
	Limit    *int
}

// SearchTerms splits the free-text search into terms. Each term has to match
// at least one of name, description or category.
func (f ItemFilter) SearchTerms() []string {
	return strings.FieldsFunc(f.Search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func (f ItemFilter) ordering() []OrderField {
	if len(f.Ordering) == 0 {
		return DefaultItemOrdering
	}
	return f.Ordering
}
