package telegram

import (
	"context"

	"github.com/fjod/go_cart/order-bot/internal/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender renders replies as Telegram messages.
type Sender struct {
	api    API
	redact redactor
	log    *zap.Logger
}

func NewSender(api API, token string, log *zap.Logger) *Sender {
	return &Sender{api: api, redact: redactor(token), log: log.Named("sender")}
}

// Deliver sends replies in order. For a button press the first reply replaces
// the pressed message; everything else is sent as a new message.
func (s *Sender) Deliver(ctx context.Context, in Inbound, replies []service.Reply) error {
	for i, r := range replies {
		if i == 0 && in.CallbackID != "" && in.MessageID != 0 {
			err := s.edit(in, r)
			if err == nil {
				continue
			}
			s.log.Debug("edit failed, sending new message", zap.Error(err))
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.send(in.ChatID, r); err != nil {
			return err
		}
	}
	return nil
}

// Answer acknowledges a button press so the client stops its spinner.
func (s *Sender) Answer(callbackID string) error {
	if callbackID == "" {
		return nil
	}
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return s.redact.wrap(err)
	}
	return nil
}

func (s *Sender) send(chatID int64, r service.Reply) error {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if kb := keyboard(r.Buttons); kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := s.api.Send(msg); err != nil {
		return s.redact.wrap(err)
	}
	return nil
}

func (s *Sender) edit(in Inbound, r service.Reply) error {
	edit := tgbotapi.NewEditMessageText(in.ChatID, in.MessageID, r.Text)
	edit.ReplyMarkup = keyboard(r.Buttons)
	if _, err := s.api.Send(edit); err != nil {
		return s.redact.wrap(err)
	}
	return nil
}

func keyboard(rows [][]service.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &kb
}
