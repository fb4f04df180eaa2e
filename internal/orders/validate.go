package orders

import (
	"errors"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var (
	ErrMissingCustomer = errors.New("customer details (name, email, phone) are required")
	ErrInvalidEmail    = errors.New("invalid customer email format")
	ErrEmptyCart       = errors.New("cart items are required")
)

// ValidateSubmission runs all input checks up front; nothing touches the store
// until it has passed.
func ValidateSubmission(cust CustomerDetails, items []CartItem) error {
	if strings.TrimSpace(cust.Name) == "" || strings.TrimSpace(cust.Email) == "" || strings.TrimSpace(cust.Phone) == "" {
		return ErrMissingCustomer
	}
	if !emailRe.MatchString(cust.Email) {
		return ErrInvalidEmail
	}
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			return errors.New("cart item missing productId")
		}
	}
	return nil
}

// NormalizeQuantity clamps a client-supplied quantity to the 1+ range the line
// item schema requires. An absent quantity decodes as zero and becomes 1.
func NormalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
