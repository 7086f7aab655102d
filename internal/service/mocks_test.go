package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/order-bot/internal/domain"
	"github.com/fjod/go_cart/order-bot/internal/notify"
)

// mockNotifier records messages; err is returned for every send while set.
// A non-nil gate holds every send until it is closed.
type mockNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
	gate chan struct{}
}

func (m *mockNotifier) Send(ctx context.Context, msg notify.Message) error {
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *mockNotifier) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockNotifier) orderIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		ids = append(ids, msg.OrderID)
	}
	return ids
}

func (m *mockNotifier) last() notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

// mockSubmitter captures orders without sending them
type mockSubmitter struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (m *mockSubmitter) Submit(_ context.Context, o domain.Order) *notify.Pending {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return &notify.Pending{OrderID: o.ID}
}

func (m *mockSubmitter) submitted() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, len(m.orders))
	copy(out, m.orders)
	return out
}
