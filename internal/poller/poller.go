package poller

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 // seconds a getUpdates call may hang

// UpdateSource is the long-polling side of the Bot API.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Sink consumes raw updates.
type Sink interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Poller struct {
	source  UpdateSource
	sink    Sink
	timeout int
	log     *zap.Logger
}

func NewPoller(source UpdateSource, sink Sink, log *zap.Logger) *Poller {
	return &Poller{
		source:  source,
		sink:    sink,
		timeout: DefaultTimeout,
		log:     log.Named("poller"),
	}
}

// Run forwards updates to the sink until ctx is cancelled or the source stops.
func (p *Poller) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := p.source.GetUpdatesChan(cfg)

	p.log.Info("long polling started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info("long polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				p.log.Warn("update channel closed")
				return
			}
			p.sink.HandleUpdate(ctx, update)
		}
	}
}

func (p *Poller) Close() {
	p.source.StopReceivingUpdates()
}
