// model/book.go
package model

import "github.com/shopspring/decimal"

// Book statuses written by checkout and returns.
const (
	BookInStock = "in stock"
	BookSold    = "sold"
	BookRented  = "rented"
)

// MaxPrice is the largest amount a NUMERIC(10,2) column holds.
var MaxPrice = decimal.RequireFromString("99999999.99")

// ValidPrice reports whether p is storable as-is: non-negative, whole
// cents and within MaxPrice.
func ValidPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.Equal(p.Round(2)) && p.LessThanOrEqual(MaxPrice)
}

type Book struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	BuyPrice        decimal.Decimal `json:"buy_price"`
	RentPrice       decimal.Decimal `json:"rent_price"`
	Status          string          `json:"status"`
	Quantity        int             `json:"quantity"`
	Genre           string          `json:"genre"`
	PublicationYear int             `json:"publication_year"`
}

// BookPatch carries the manager-editable book fields. Nil means untouched.
type BookPatch struct {
	Title           *string          `json:"title,omitempty" validate:"omitempty,min=1"`
	Author          *string          `json:"author,omitempty" validate:"omitempty,min=1"`
	BuyPrice        *decimal.Decimal `json:"buy_price,omitempty"`
	RentPrice       *decimal.Decimal `json:"rent_price,omitempty"`
	Status          *string          `json:"status,omitempty"`
	Quantity        *int             `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Genre           *string          `json:"genre,omitempty"`
	PublicationYear *int             `json:"publication_year,omitempty"`
}
