package notify

import (
	"fmt"
	"strings"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/orders"
)

// OrderMessage renders the human-readable notification for one placed order.
func OrderMessage(p orders.OrderPlacedPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New Order #%s!\n\n", p.OrderID)
	fmt.Fprintf(&b, "Customer:\n  Name: %s\n  Email: %s\n  Phone: %s\n\n",
		p.Customer.Name, p.Customer.Email, p.Customer.Phone)
	b.WriteString("Items:\n")
	for _, it := range p.Items {
		fmt.Fprintf(&b, "  - %s (%d x $%s)\n", it.Name, it.Quantity, it.PriceAtPurchase.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s", p.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "\n\nOrder placed by user: %s (ID: %s)", p.UserEmail, p.UserID)
	return b.String()
}
