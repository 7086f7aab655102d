package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// SecretHeader carries the webhook secret on every update Telegram pushes.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

var ErrTransport = errors.New("telegram transport error")

// API is the subset of *tgbotapi.BotAPI the bot relies on.
type API interface {
	// Send delivers a message-producing request (new message, edit)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)

	// Request performs a call whose result is not a message (callback answers, webhooks)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)

	// MakeRequest calls a raw Bot API method
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)

	// GetUpdatesChan starts long polling
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel

	// StopReceivingUpdates stops long polling
	StopReceivingUpdates()
}

// Connect authenticates with the Bot API. The library logger is replaced so
// that nothing it prints can leak the token.
func Connect(token string, log *zap.Logger) (*tgbotapi.BotAPI, error) {
	r := redactor(token)
	if err := tgbotapi.SetLogger(&zapLogger{log: log.Named("tgbotapi"), redact: r}); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, r.wrap(err)
	}
	log.Info("authorized on telegram", zap.String("bot", api.Self.UserName))
	return api, nil
}

// SetWebhook registers url with Telegram, or removes the webhook when url is empty.
func SetWebhook(api API, token, url, secret string) error {
	r := redactor(token)
	if url == "" {
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			return r.wrap(err)
		}
		return nil
	}
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return r.wrap(err)
	}
	return nil
}

// redactor strips the bot token out of error text. The HTTP client embeds the
// request URL, and with it the token, in transport errors.
type redactor string

func (r redactor) String(s string) string {
	if r == "" {
		return s
	}
	return strings.ReplaceAll(s, string(r), "<redacted>")
}

func (r redactor) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrTransport, r.String(err.Error()))
}

// zapLogger adapts zap to tgbotapi.BotLogger.
type zapLogger struct {
	log    *zap.Logger
	redact redactor
}

func (l *zapLogger) Println(v ...interface{}) {
	l.log.Debug(l.redact.String(strings.TrimSuffix(fmt.Sprintln(v...), "\n")))
}

func (l *zapLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(l.redact.String(fmt.Sprintf(format, v...)))
}
