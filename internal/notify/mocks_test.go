package notify

import (
	"context"
	"sync"
)

// mockNotifier records sent messages and returns err for every send
type mockNotifier struct {
	mu      sync.Mutex
	sent    []Message
	err     error
	release chan struct{}
}

func (m *mockNotifier) Send(ctx context.Context, msg Message) error {
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *mockNotifier) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
