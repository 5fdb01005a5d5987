package client

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jasonlau05/bookstore/model"
)

var ErrAlreadyInCart = errors.New("book already in cart")

// Cart holds at most one line per book, in the order books were added.
// Prices are captured at add time and sent as-is at checkout.
type Cart struct {
	lines []model.CartLine
	index map[int64]int
}

func NewCart() *Cart { return &Cart{index: map[int64]int{}} }

// Add puts b in the cart to buy or rent, priced from the listing.
func (c *Cart) Add(b model.Book, kind model.ItemKind) error {
	if !kind.Purchasable() {
		return fmt.Errorf("cannot add book as %q", kind)
	}
	if _, ok := c.index[b.ID]; ok {
		return ErrAlreadyInCart
	}

	price := b.BuyPrice
	if kind == model.KindRent {
		price = b.RentPrice
	}
	c.index[b.ID] = len(c.lines)
	c.lines = append(c.lines, model.CartLine{BookID: b.ID, Kind: kind, Price: price})
	return nil
}

func (c *Cart) Remove(bookID int64) bool {
	i, ok := c.index[bookID]
	if !ok {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, bookID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].BookID] = j
	}
	return true
}

// Lines returns a copy of the cart contents.
func (c *Cart) Lines() []model.CartLine {
	return append([]model.CartLine(nil), c.lines...)
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Price)
	}
	return total
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = map[int64]int{}
}
