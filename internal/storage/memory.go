package storage

import (
	"context"
	"sync"

	"github.com/dukerupert/harvansh/internal/domain"
)

// MemoryStore keeps cart items in process memory. Contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[int64]domain.CartItem
	carts  map[string]map[int64]struct{}
	closed bool
}

var _ CartStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[int64]domain.CartItem),
		carts: make(map[string]map[int64]struct{}),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.CartItem{}, ErrClosed
	}
	item, ok := s.items[id]
	if !ok {
		return domain.CartItem{}, ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore) Put(ctx context.Context, item domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if prev, ok := s.items[item.ID]; ok && prev.CartID != item.CartID {
		s.unindex(prev)
	}
	s.items[item.ID] = item
	ids, ok := s.carts[item.CartID]
	if !ok {
		ids = make(map[int64]struct{})
		s.carts[item.CartID] = ids
	}
	ids[item.ID] = struct{}{}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	item, ok := s.items[id]
	if !ok {
		return false, nil
	}
	delete(s.items, id)
	s.unindex(item)
	return true, nil
}

func (s *MemoryStore) unindex(item domain.CartItem) {
	ids := s.carts[item.CartID]
	delete(ids, item.ID)
	if len(ids) == 0 {
		delete(s.carts, item.CartID)
	}
}

func (s *MemoryStore) ListByCart(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	ids := s.carts[cartID]
	items := make([]domain.CartItem, 0, len(ids))
	for id := range ids {
		items = append(items, s.items[id])
	}
	sortByID(items)
	return items, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	items := make([]domain.CartItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sortByID(items)
	return items, nil
}

func (s *MemoryStore) MaxID(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	var max int64
	for id := range s.items {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
