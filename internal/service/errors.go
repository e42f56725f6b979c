package service

import "errors"

var (
	// ErrProductNotFound is returned when no product matches the given id.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartNotFound is returned when no cart matches the given id.
	ErrCartNotFound = errors.New("cart not found")
)
