package inventory

import (
	"math"
	"strings"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
	"github.com/shopspring/decimal"
)

const (
	maxNameLength     = 255
	maxCategoryLength = 120
	priceDecimals     = 2
	priceMaxDigits    = 10

	// quantity is stored as a PostgreSQL INTEGER
	maxQuantity = math.MaxInt32
)

// NewItem carries the fields of a create request. Quantity defaults to 0.
type NewItem struct {
	Name        string
	Description string
	Quantity    *int
	Price       *decimal.Decimal
	Category    string
}

// ItemPatch lists the fields of an update; nil means "leave unchanged".
type ItemPatch struct {
	Name        *string
	Description *string
	Quantity    *int
	Price       *decimal.Decimal
	Category    *string
}

func validateName(ve *apperr.ValidationError, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		ve.Add("name", "Name is required.")
	case len([]rune(name)) > maxNameLength:
		ve.Add("name", "Ensure this field has no more than 255 characters.")
	}
}

func validateCategory(ve *apperr.ValidationError, category string) {
	if len([]rune(category)) > maxCategoryLength {
		ve.Add("category", "Ensure this field has no more than 120 characters.")
	}
}

func validateQuantity(ve *apperr.ValidationError, qty int) {
	switch {
	case qty < 0:
		ve.Add("quantity", "Quantity cannot be negative.")
	case qty > maxQuantity:
		ve.Add("quantity", "Ensure this value is less than or equal to 2147483647.")
	}
}

func validatePrice(ve *apperr.ValidationError, price decimal.Decimal) {
	if price.IsNegative() {
		ve.Add("price", "Price cannot be negative.")
		return
	}
	if !price.Equal(price.Round(priceDecimals)) {
		ve.Add("price", "Ensure that there are no more than 2 decimal places.")
		return
	}
	if len(price.Truncate(0).String()) > priceMaxDigits-priceDecimals {
		ve.Add("price", "Ensure that there are no more than 8 digits before the decimal point.")
	}
}

// Validate checks a create request.
func (n NewItem) Validate() error {
	ve := &apperr.ValidationError{}
	validateName(ve, n.Name)
	validateCategory(ve, n.Category)
	if n.Quantity != nil {
		validateQuantity(ve, *n.Quantity)
	}
	if n.Price == nil {
		ve.Add("price", "This field is required.")
	} else {
		validatePrice(ve, *n.Price)
	}
	return ve.OrNil()
}

// Validate checks the fields present in the patch. With full set, name and
// price are mandatory as for a create.
func (p ItemPatch) Validate(full bool) error {
	ve := &apperr.ValidationError{}
	if p.Name != nil {
		validateName(ve, *p.Name)
	} else if full {
		ve.Add("name", "This field is required.")
	}
	if p.Category != nil {
		validateCategory(ve, *p.Category)
	}
	if p.Quantity != nil {
		validateQuantity(ve, *p.Quantity)
	}
	if p.Price != nil {
		validatePrice(ve, *p.Price)
	} else if full {
		ve.Add("price", "This field is required.")
	}
	return ve.OrNil()
}
