package handlers

import (
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/apperr"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors []apperr.FieldError `json:"errors"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

// ItemRequest is the body of item create and update requests. Absent fields
// stay nil.
type ItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string" example:"12.50"`
	Category    *string          `json:"category"`
}

type ItemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Price       string    `json:"price" example:"12.50"`
	Category    string    `json:"category"`
	Owner       string    `json:"owner"`
	DateAdded   time.Time `json:"date_added"`
	LastUpdated time.Time `json:"last_updated"`
	LowStock    bool      `json:"low_stock"`
}

type ItemsSearchResult struct {
	Data []ItemResponse `json:"data"`
	Meta Meta           `json:"meta"`
}

type ChangeResponse struct {
	ID          int64     `json:"id"`
	Item        int64     `json:"item"`
	ChangedBy   *string   `json:"changed_by"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
	ChangeType  string    `json:"change_type"`
	ChangeDate  time.Time `json:"change_date"`
}

type ChangesSearchResult struct {
	Data []ChangeResponse `json:"data"`
	Meta Meta             `json:"meta"`
}

type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

type UsersResult struct {
	Data []UserResponse `json:"data"`
	Meta Meta           `json:"meta"`
}

type ImportItemsResult struct {
	Created int                 `json:"created"`
	Updated int                 `json:"updated"`
	Errors  []apperr.FieldError `json:"errors"`
}
