// model/order.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
)

type ItemKind string

const (
	KindBuy      ItemKind = "buy"
	KindRent     ItemKind = "rent"
	KindReturned ItemKind = "returned"
)

// Purchasable reports whether a cart line may carry this kind.
func (k ItemKind) Purchasable() bool { return k == KindBuy || k == KindRent }

type Order struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Status     OrderStatus     `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

type OrderItem struct {
	ID      int64           `json:"id"`
	OrderID int64           `json:"order_id"`
	BookID  int64           `json:"book_id"`
	Title   string          `json:"title,omitempty"`
	Kind    ItemKind        `json:"kind"`
	Price   decimal.Decimal `json:"price"`
}

// CartLine is one book of a submitted cart, priced when it was added.
type CartLine struct {
	BookID int64           `json:"book_id" validate:"required,gt=0"`
	Kind   ItemKind        `json:"kind" validate:"required,oneof=buy rent"`
	Price  decimal.Decimal `json:"price"`
}

type PlacedOrder struct {
	OrderID   int64           `json:"order_id"`
	TotalCost decimal.Decimal `json:"total_cost"`
}
