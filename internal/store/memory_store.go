package store

import (
	"sync"

	"github.com/fjod/go_cart/order-bot/internal/domain"
)

// MemoryCartStore implements CartStore with in-memory storage
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[int64][]domain.CartLine // userID -> lines
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[int64][]domain.CartLine),
	}
}

func (s *MemoryCartStore) AddLine(userID int64, line domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[userID]
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			return
		}
	}
	s.carts[userID] = append(lines, line)
}

func (s *MemoryCartStore) Lines(userID int64) []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.carts[userID]
	if len(lines) == 0 {
		return nil
	}
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}

func (s *MemoryCartStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

func (s *MemoryCartStore) RemoveLines(userID int64, lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remove := make(map[string]int, len(lines))
	for _, l := range lines {
		remove[l.ProductID] += l.Quantity
	}
	kept := s.carts[userID][:0]
	for _, l := range s.carts[userID] {
		l.Quantity -= remove[l.ProductID]
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(s.carts, userID)
		return
	}
	s.carts[userID] = kept
}

// MemorySessionStore implements SessionStore with in-memory storage
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]domain.Session // userID -> session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[int64]domain.Session),
	}
}

func (s *MemorySessionStore) Get(userID int64) (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *MemorySessionStore) Put(userID int64, session domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

func (s *MemorySessionStore) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
