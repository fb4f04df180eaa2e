package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerDetails is the contact snapshot captured at submission time,
// independent of the user record.
type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID            string
	UserID        string
	TotalAmount   decimal.Decimal
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Status        Status
	OrderDate     time.Time
}

type OrderItem struct {
	ID              string
	OrderID         string
	ProductID       string
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

// Line is a resolved cart line: the catalog snapshot an OrderItem was written from.
type Line struct {
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// Confirmation is what a successful submission returns to the caller.
type Confirmation struct {
	OrderID     string
	TotalAmount decimal.Decimal
	Lines       []Line
}
