package model

import (
	"fmt"
	"strconv"
)

type LineItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type Cart struct {
	ID       string     `json:"id"`
	Products []LineItem `json:"products"`
}

func NewCart(id int) Cart {
	return Cart{ID: strconv.Itoa(id), Products: []LineItem{}}
}

// Sequence parses the textual id back to its allocation number.
func (c Cart) Sequence() (int, error) {
	n, err := strconv.Atoi(c.ID)
	if err != nil {
		return 0, fmt.Errorf("cart id %q is not sequential: %w", c.ID, err)
	}
	return n, nil
}

// AddProduct increments the line item for productID, or appends a new one
// with quantity 1. It reports whether a new line item was created.
func (c *Cart) AddProduct(productID string) bool {
	for i := range c.Products {
		if c.Products[i].Product == productID {
			c.Products[i].Quantity++
			return false
		}
	}
	c.Products = append(c.Products, LineItem{Product: productID, Quantity: 1})
	return true
}
