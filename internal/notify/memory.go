package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store. It backs tests and serves as the degraded
// mode when the database is unreachable, so the inbox keeps accepting
// messages instead of dropping them.
type MemStore struct {
	mu    sync.Mutex
	items []*Notification
	byID  map[uuid.UUID]*Notification
	now   func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		byID: map[uuid.UUID]*Notification{},
		now:  time.Now,
	}
}

func (s *MemStore) Create(_ context.Context, n Notification) (Notification, error) {
	if err := n.Validate(); err != nil {
		return Notification{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n.ID = uuid.New()
	n.IsRead = false
	n.IsClicked = false
	n.ClickCount = 0
	n.ReadAt = nil
	n.ClickedAt = nil
	n.CreatedAt = s.now()

	stored := n
	s.items = append(s.items, &stored)
	s.byID[stored.ID] = &stored
	return stored, nil
}

func (s *MemStore) List(_ context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Notification{}
	// Walk newest-insertion-first so equal timestamps keep newest first.
	for i := len(s.items) - 1; i >= 0; i-- {
		n := s.items[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		ts := s.now()
		n.ReadAt = &ts
	}
	return nil
}

func (s *MemStore) MarkClicked(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	ts := s.now()
	n.IsClicked = true
	n.ClickedAt = &ts
	n.ClickCount++
	n.IsRead = true
	if n.ReadAt == nil {
		n.ReadAt = &ts
	}
	return nil
}

func (s *MemStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	for i, n := range s.items {
		if n.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemStore) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
