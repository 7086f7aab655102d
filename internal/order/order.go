// Package order assembles confirmed carts into order records and renders them
// for delivery to the storefront.
package order

import (
	"fmt"
	"strings"

	"github.com/fjod/go_cart/order-bot/internal/domain"
)

const notProvided = "(not provided)"

// Build snapshots the cart lines and captured contact fields into an order.
func Build(id string, buyer domain.User, lines []domain.CartLine, session domain.Session) domain.Order {
	snapshot := make([]domain.CartLine, len(lines))
	copy(snapshot, lines)
	return domain.Order{
		ID:      id,
		Buyer:   buyer,
		Lines:   snapshot,
		Address: session.Address,
		Phone:   session.Phone,
	}
}

func Subject(o domain.Order) string {
	return fmt.Sprintf("Telegram Order from %s", orDefault(o.Buyer.FullName, "Unknown"))
}

// Body renders the order as the plain-text message sent to the store.
func Body(o domain.Order) string {
	var b strings.Builder
	b.WriteString("New order from Telegram bot\n\n")
	fmt.Fprintf(&b, "Order reference: %s\n", o.ID)
	fmt.Fprintf(&b, "From: %s (@%s)\n", orDefault(o.Buyer.FullName, "Unknown"), orDefault(o.Buyer.UserName, "None"))
	fmt.Fprintf(&b, "Telegram ID: %d\n\n", o.Buyer.ID)
	fmt.Fprintf(&b, "Delivery address:\n%s\n\n", orDefault(o.Address, notProvided))
	fmt.Fprintf(&b, "Contact phone: %s\n\n", orDefault(o.Phone, notProvided))
	b.WriteString("Order items:\n")
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%d × %s @ %s\n", l.Quantity, l.Name, domain.FormatPrice(l.UnitPrice))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n\n", domain.FormatPrice(o.Total()))
	b.WriteString("Please reply to this email or call to confirm payment/delivery.")
	return b.String()
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
