package notify

import (
	"context"

	"github.com/fjod/go_cart/order-bot/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerNotifier fails fast while the wrapped transport keeps failing
type BreakerNotifier struct {
	next Notifier
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerNotifier(next Notifier, cfg circuitbreaker.Config, log *zap.Logger) *BreakerNotifier {
	return &BreakerNotifier{
		next: next,
		cb:   circuitbreaker.New[struct{}](cfg, log),
	}
}

func (b *BreakerNotifier) Send(ctx context.Context, msg Message) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, msg)
	})
	return err
}
