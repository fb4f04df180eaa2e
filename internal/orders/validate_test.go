package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validCustomer() CustomerDetails {
	return CustomerDetails{Name: "Jane Buyer", Email: "jane@example.com", Phone: "+15551234567"}
}

func TestValidateSubmission(t *testing.T) {
	items := []CartItem{{ProductID: "p1", Quantity: 1}}

	require.NoError(t, ValidateSubmission(validCustomer(), items))

	t.Run("missing customer fields", func(t *testing.T) {
		for _, cust := range []CustomerDetails{
			{Email: "jane@example.com", Phone: "555"},
			{Name: "Jane", Phone: "555"},
			{Name: "Jane", Email: "jane@example.com"},
			{Name: "  ", Email: "jane@example.com", Phone: "555"},
		} {
			require.ErrorIs(t, ValidateSubmission(cust, items), ErrMissingCustomer)
		}
	})

	t.Run("malformed email", func(t *testing.T) {
		cust := validCustomer()
		cust.Email = "not-an-email"
		require.ErrorIs(t, ValidateSubmission(cust, items), ErrInvalidEmail)
	})

	t.Run("empty cart", func(t *testing.T) {
		require.ErrorIs(t, ValidateSubmission(validCustomer(), nil), ErrEmptyCart)
		require.ErrorIs(t, ValidateSubmission(validCustomer(), []CartItem{}), ErrEmptyCart)
	})

	t.Run("blank product id", func(t *testing.T) {
		err := ValidateSubmission(validCustomer(), []CartItem{{ProductID: " "}})
		require.Error(t, err)
	})

	// Resubmitting the same invalid input always yields the same error.
	t.Run("failure is repeatable", func(t *testing.T) {
		first := ValidateSubmission(validCustomer(), nil)
		second := ValidateSubmission(validCustomer(), nil)
		require.Equal(t, first, second)
	})
}

func TestNormalizeQuantity(t *testing.T) {
	require.Equal(t, 1, NormalizeQuantity(0))
	require.Equal(t, 1, NormalizeQuantity(-3))
	require.Equal(t, 1, NormalizeQuantity(1))
	require.Equal(t, 7, NormalizeQuantity(7))
}
