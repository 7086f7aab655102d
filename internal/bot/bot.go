package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/internal/service"
	"github.com/fjod/go_cart/order-bot/internal/telegram"
	"github.com/fjod/go_cart/order-bot/pkg/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	DefaultWorkers = 8
	shardBuffer    = 64
)

var ErrStopped = errors.New("bot stopped")

// Handler produces the outcome of one user event.
type Handler interface {
	Handle(ctx context.Context, ev domain.Event) service.Outcome
}

// Deliverer writes replies back to the chat.
type Deliverer interface {
	Deliver(ctx context.Context, in telegram.Inbound, replies []service.Reply) error
	Answer(callbackID string) error
}

// Bot serializes events per user. Each user id maps to one shard, so one
// user's events run in arrival order while different users run in parallel.
type Bot struct {
	handler Handler
	out     Deliverer
	shards  []chan telegram.Inbound
	log     *zap.Logger

	quit     chan struct{}
	stopOnce sync.Once
	workers  sync.WaitGroup
}

func New(handler Handler, out Deliverer, workers int, log *zap.Logger) *Bot {
	if workers < 1 {
		workers = DefaultWorkers
	}
	b := &Bot{
		handler: handler,
		out:     out,
		shards:  make([]chan telegram.Inbound, workers),
		log:     log.Named("bot"),
		quit:    make(chan struct{}),
	}
	for i := range b.shards {
		b.shards[i] = make(chan telegram.Inbound, shardBuffer)
	}
	return b
}

// Start launches one worker per shard.
func (b *Bot) Start(ctx context.Context) {
	for _, shard := range b.shards {
		b.workers.Add(1)
		go b.work(ctx, shard)
	}
	b.log.Info("workers started", zap.Int("shards", len(b.shards)))
}

// HandleUpdate decodes a raw update and queues it. Updates that do not map to
// an event are dropped, but button presses are still answered.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	in, err := telegram.Decode(update)
	if err != nil {
		if in.CallbackID != "" {
			b.answer(in.CallbackID)
		}
		b.log.Debug("update dropped", zap.Int("update_id", update.UpdateID), zap.Error(err))
		return
	}
	if err := b.Enqueue(ctx, in); err != nil {
		b.log.Warn("update not queued", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

// Enqueue places an event on its user's shard, blocking while the shard is full.
func (b *Bot) Enqueue(ctx context.Context, in telegram.Inbound) error {
	select {
	case <-b.quit:
		return ErrStopped
	default:
	}
	shard := b.shards[shardFor(in.Event.User.ID, len(b.shards))]
	select {
	case shard <- in:
		return nil
	case <-b.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop signals the workers and waits for them to finish the current event.
func (b *Bot) Stop(ctx context.Context) error {
	b.stopOnce.Do(func() { close(b.quit) })
	done := make(chan struct{})
	go func() {
		b.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shardFor(userID int64, n int) int {
	return int(uint64(userID) % uint64(n))
}

func (b *Bot) work(ctx context.Context, shard <-chan telegram.Inbound) {
	defer b.workers.Done()
	for {
		select {
		case <-b.quit:
			return
		case <-ctx.Done():
			return
		case in := <-shard:
			b.process(ctx, in)
		}
	}
}

func (b *Bot) process(ctx context.Context, in telegram.Inbound) {
	log := logger.WithUser(b.log, in.Event.User.ID).With(zap.String("event", string(in.Event.Type)))
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic", zap.Any("panic", r), zap.Stack("stack"))
			b.fail(ctx, in, log)
		}
	}()

	b.answer(in.CallbackID)
	out := b.handler.Handle(ctx, in.Event)
	if out.Pending != nil {
		go b.awaitDispatch(ctx, in, out)
	}
	if len(out.Replies) == 0 {
		return
	}
	if err := b.out.Deliver(ctx, in, out.Replies); err != nil {
		log.Error("reply delivery failed", zap.Error(err))
		b.fail(ctx, in, log)
	}
}

// awaitDispatch feeds the dispatch outcome back onto the user's shard so the
// session is only ever touched by its owning worker.
func (b *Bot) awaitDispatch(ctx context.Context, in telegram.Inbound, out service.Outcome) {
	select {
	case <-out.Pending.Done():
	case <-b.quit:
		return
	}
	follow := telegram.Inbound{
		ChatID: in.ChatID,
		Event: domain.Event{
			Type: domain.EventDispatchResult,
			User: in.Event.User,
			Result: &domain.DispatchResult{
				OrderID: out.Pending.OrderID,
				Err:     out.Pending.Err(),
			},
		},
	}
	if err := b.Enqueue(context.WithoutCancel(ctx), follow); err != nil {
		b.log.Warn("dispatch result dropped",
			zap.String("order_id", out.Pending.OrderID), zap.Error(err))
	}
}

func (b *Bot) answer(callbackID string) {
	if callbackID == "" {
		return
	}
	if err := b.out.Answer(callbackID); err != nil {
		b.log.Warn("callback answer failed", zap.Error(err))
	}
}

func (b *Bot) fail(ctx context.Context, in telegram.Inbound, log *zap.Logger) {
	if in.ChatID == 0 {
		return
	}
	notice := telegram.Inbound{ChatID: in.ChatID}
	if err := b.out.Deliver(ctx, notice, []service.Reply{{Text: service.TextGenericFailure}}); err != nil {
		log.Error("failure notice not delivered", zap.Error(err))
	}
}
