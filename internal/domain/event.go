package domain

import (
	"errors"
	"strings"
)

type EventType string

const (
	EventStart          EventType = "start"
	EventMenu           EventType = "menu"
	EventAddProduct     EventType = "add"
	EventViewCart       EventType = "view_cart"
	EventShowMenu       EventType = "show_menu"
	EventClearCart      EventType = "clear_cart"
	EventStartCheckout  EventType = "start_checkout"
	EventConfirmOrder   EventType = "confirm_order"
	EventCancelOrder    EventType = "cancel_order"
	EventText           EventType = "text"
	EventDispatchResult EventType = "dispatch_result"
)

var ErrUnknownAction = errors.New("unknown callback action")

const addPrefix = "add:"

// Event is a normalized user interaction. Payload carries the product id for
// EventAddProduct and the message text for EventText.
type Event struct {
	Type    EventType
	User    User
	Payload string
	Result  *DispatchResult
}

// DispatchResult reports the outcome of a notification dispatch back to the
// session that submitted it.
type DispatchResult struct {
	OrderID string
	Err     error
}

// CallbackData encodes a button action into the opaque payload sent to the chat platform.
func CallbackData(t EventType, payload string) string {
	if t == EventAddProduct {
		return addPrefix + payload
	}
	return string(t)
}

// ParseCallback validates a raw button payload.
func ParseCallback(data string) (EventType, string, error) {
	if strings.HasPrefix(data, addPrefix) {
		return EventAddProduct, data[len(addPrefix):], nil
	}
	switch t := EventType(data); t {
	case EventViewCart, EventShowMenu, EventClearCart,
		EventStartCheckout, EventConfirmOrder, EventCancelOrder:
		return t, "", nil
	}
	return "", "", ErrUnknownAction
}

// ParseCommand maps a chat command (without the leading slash) to an event type.
func ParseCommand(cmd string) (EventType, bool) {
	switch cmd {
	case "start":
		return EventStart, true
	case "menu":
		return EventMenu, true
	}
	return "", false
}
