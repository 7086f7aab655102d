package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/internal/order"
	"github.com/fjod/go_cart/order-bot/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Pending is the handle returned by Submit. It resolves once the send finishes.
type Pending struct {
	OrderID string
	done    chan struct{}
	err     error
}

func newPending(orderID string) *Pending {
	return &Pending{OrderID: orderID, done: make(chan struct{})}
}

func (p *Pending) resolve(err error) {
	p.err = err
	close(p.done)
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the send outcome; only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the send finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Dispatcher struct {
	notifier Notifier
	from     string
	to       string
	log      *zap.Logger
	tracer   trace.Tracer
	sfg      singleflight.Group // collapses concurrent submissions of the same order
	wg       sync.WaitGroup
}

type Option func(*Dispatcher)

func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

func NewDispatcher(notifier Notifier, from, to string, log *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		from:     from,
		to:       to,
		log:      log.Named("notify"),
		tracer:   otel.Tracer("github.com/fjod/go_cart/order-bot/internal/notify"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit starts delivering the order in the background and returns immediately.
// The send is detached from ctx cancellation; only its values are kept.
func (d *Dispatcher) Submit(ctx context.Context, o domain.Order) *Pending {
	msg := Message{
		OrderID: o.ID,
		Subject: order.Subject(o),
		From:    d.from,
		To:      d.to,
		Body:    order.Body(o),
	}
	sendCtx := context.WithoutCancel(ctx)

	p := newPending(o.ID)
	d.wg.Add(1)
	ch := d.sfg.DoChan(o.ID, func() (interface{}, error) {
		return nil, d.send(sendCtx, msg)
	})
	go func() {
		defer d.wg.Done()
		res := <-ch
		p.resolve(res.Err)
	}()
	return p
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	ctx, span := d.tracer.Start(ctx, "notify.send",
		trace.WithAttributes(attribute.String("order.id", msg.OrderID)))
	defer span.End()

	log := logger.WithTrace(ctx, d.log).With(zap.String("order_id", msg.OrderID))
	if err := d.notifier.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		log.Error("order notification failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	log.Info("order notification sent", zap.String("to", msg.To))
	return nil
}

// Close waits for in-flight sends to finish or ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
