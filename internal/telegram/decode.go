package telegram

import (
	"errors"
	"strings"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ErrUnsupportedUpdate = errors.New("unsupported update")

// Inbound is a decoded update together with the chat coordinates needed to
// answer it.
type Inbound struct {
	Event      domain.Event
	ChatID     int64
	MessageID  int    // message carrying the pressed button
	CallbackID string // set for button presses
}

// Decode turns a raw update into a typed event. Unknown button payloads still
// return the callback id so the press can be answered.
func Decode(update tgbotapi.Update) (Inbound, error) {
	if cb := update.CallbackQuery; cb != nil {
		in := Inbound{CallbackID: cb.ID}
		if cb.Message != nil && cb.Message.Chat != nil {
			in.ChatID = cb.Message.Chat.ID
			in.MessageID = cb.Message.MessageID
		}
		if cb.From == nil || in.ChatID == 0 {
			return in, ErrUnsupportedUpdate
		}
		t, payload, err := domain.ParseCallback(cb.Data)
		if err != nil {
			return in, err
		}
		in.Event = domain.Event{Type: t, User: userFrom(cb.From), Payload: payload}
		return in, nil
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return Inbound{}, ErrUnsupportedUpdate
	}
	in := Inbound{ChatID: msg.Chat.ID}
	if msg.IsCommand() {
		t, ok := domain.ParseCommand(msg.Command())
		if !ok {
			return in, ErrUnsupportedUpdate
		}
		in.Event = domain.Event{Type: t, User: userFrom(msg.From)}
		return in, nil
	}
	if msg.Text == "" {
		return in, ErrUnsupportedUpdate
	}
	in.Event = domain.Event{Type: domain.EventText, User: userFrom(msg.From), Payload: msg.Text}
	return in, nil
}

func userFrom(u *tgbotapi.User) domain.User {
	return domain.User{
		ID:       u.ID,
		FullName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		UserName: u.UserName,
	}
}
