package store

import "github.com/fjod/go_cart/order-bot/internal/domain"

// CartStore defines per-user cart storage
type CartStore interface {
	// AddLine merges the line into the user's cart: an existing line for the same
	// product has its quantity increased, otherwise the line is appended
	AddLine(userID int64, line domain.CartLine)

	// Lines returns a copy of the user's cart lines in insertion order
	Lines(userID int64) []domain.CartLine

	// Clear removes the user's cart; clearing a missing cart is a no-op
	Clear(userID int64)

	// RemoveLines subtracts each line's quantity from the matching product; lines
	// that reach zero are dropped and products not in the cart are skipped
	RemoveLines(userID int64, lines []domain.CartLine)
}

// SessionStore defines per-user checkout session storage
type SessionStore interface {
	// Get returns the user's session and whether one exists
	Get(userID int64) (domain.Session, bool)

	// Put replaces the user's session
	Put(userID int64, session domain.Session)

	// Delete removes the user's session; deleting a missing session is a no-op
	Delete(userID int64)
}
