package cards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxQuantity is the largest owned quantity accepted for a single card.
const MaxQuantity = 999

// ErrInvalidQuantity is returned for quantities outside [0, MaxQuantity].
var ErrInvalidQuantity = errors.New("invalid quantity")

// Collection maps identity keys to owned quantities. A missing key means
// zero copies owned.
type Collection map[string]int

// Quantity returns how many copies of key are owned.
func (c Collection) Quantity(key string) int {
	return c[key]
}

// Owns reports whether at least one copy of key is owned.
func (c Collection) Owns(key string) bool {
	return c[key] > 0
}

// SetQuantity records an ownership edit. Zero removes the entry.
func (c Collection) SetQuantity(key string, quantity int) error {
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	if quantity == 0 {
		delete(c, key)
		return nil
	}
	c[key] = quantity
	return nil
}

// Total returns the number of owned copies across all cards.
func (c Collection) Total() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

// ValidateQuantity checks an owned quantity.
func ValidateQuantity(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidQuantity)
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity cannot exceed %d", ErrInvalidQuantity, MaxQuantity)
	}
	return nil
}

// ParseQuantity parses and validates user-entered quantity text.
func ParseQuantity(text string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: please enter a valid number", ErrInvalidQuantity)
	}
	if err := ValidateQuantity(qty); err != nil {
		return 0, err
	}
	return qty, nil
}
