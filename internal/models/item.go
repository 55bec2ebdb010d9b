package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents an inventory item owned by exactly one user.
type Item struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	OwnerID       int64           `json:"owner_id"`
	OwnerUsername string          `json:"owner"`
	CreatedAt     time.Time       `json:"date_added"`
	UpdatedAt     time.Time       `json:"last_updated"`
}
