package service

import (
	"fmt"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/internal/notify"
)

// Button is a single inline action. Data is the encoded callback payload.
type Button struct {
	Label string
	Data  string
}

// Reply is a rendering-agnostic message for the user.
type Reply struct {
	Text    string
	Buttons [][]Button
}

// Outcome is everything produced by handling one event. Pending is set when an
// order was handed to dispatch and its result must be fed back later.
type Outcome struct {
	Replies []Reply
	Pending *notify.Pending
}

func button(label string, t domain.EventType) Button {
	return Button{Label: label, Data: domain.CallbackData(t, "")}
}

const (
	textWelcome         = "Welcome to %s! Use the buttons below to start:"
	textSelectProduct   = "Select a product to add to your cart:"
	textAdded           = "Added 1 × %s to your cart."
	textProductNotFound = "Product not found."
	textCartCleared     = "Cart cleared."
	textEmptyCheckout   = "Your cart is empty. Add items first."
	textAskAddress      = "Please reply with your delivery address (street, city, ZIP)."
	textAskPhone        = "Got it. Now reply with the best phone number for delivery."
	textConfirm         = "Please confirm your order:\n\n%s\n\nAddress:\n%s\nPhone: %s"
	textSending         = "Sending your order to the store..."
	textInFlight        = "Your order is being sent. Please wait a moment."
	textNoPendingOrder  = "There is no order waiting for confirmation. Open your cart to check out."
	textOrderSent       = "Order sent. The store will contact you for confirmation.\nOrder reference: %s"
	textSendFailed      = "Failed to send order email. Contact the store directly."
	textOrderCancelled  = "Order cancelled."
	TextGenericFailure  = "Sorry, something went wrong. Please try again or contact support."
)

func (r *Router) welcomeReply() Reply {
	return Reply{
		Text: fmt.Sprintf(textWelcome, r.storeName),
		Buttons: [][]Button{
			{button("View Menu", domain.EventShowMenu)},
			{button("View Cart", domain.EventViewCart)},
		},
	}
}

// menuReply lays the catalog out two products per row.
func (r *Router) menuReply() Reply {
	products := r.catalog.Products()
	rows := make([][]Button, 0, len(products)/2+2)
	var row []Button
	for _, p := range products {
		row = append(row, Button{
			Label: fmt.Sprintf("%s (%s)", p.Name, domain.FormatPrice(p.Price)),
			Data:  domain.CallbackData(domain.EventAddProduct, p.ID),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{button("View Cart", domain.EventViewCart)})
	return Reply{Text: textSelectProduct, Buttons: rows}
}

func (r *Router) cartReply(userID int64) Reply {
	return Reply{
		Text: r.carts.Summary(userID),
		Buttons: [][]Button{
			{button("Checkout", domain.EventStartCheckout)},
			{button("Clear Cart", domain.EventClearCart)},
			{button("Back to Menu", domain.EventShowMenu)},
		},
	}
}

func confirmButtons() [][]Button {
	return [][]Button{
		{button("Confirm & Send Order", domain.EventConfirmOrder)},
		{button("Cancel Order", domain.EventCancelOrder)},
	}
}

func (r *Router) confirmReply(userID int64, session domain.Session) Reply {
	return Reply{
		Text:    fmt.Sprintf(textConfirm, r.carts.Summary(userID), session.Address, session.Phone),
		Buttons: confirmButtons(),
	}
}

func text(s string) Reply {
	return Reply{Text: s}
}
