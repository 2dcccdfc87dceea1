package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"newswizard/internal/session"
)

type memoryEntry struct {
	attrs     session.Map
	updatedAt time.Time
}

// MemoryStore держит разговоры в памяти процесса. Подходит для одного экземпляра и тестов.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	closed  bool
	log     *slog.Logger
}

func NewMemoryStore(ttl time.Duration, log *slog.Logger) *MemoryStore {
	log.Info("Initializing in-memory conversation storage", slog.Duration("ttl", ttl))
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		log:     log.With(slog.String("component", "memory-store")),
	}
}

func (s *MemoryStore) Load(_ context.Context, conversationID string) (session.Map, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	e, ok := s.entries[conversationID]
	if !ok || s.expired(e) {
		return session.Map{}, nil
	}
	return cloneAttrs(e.attrs), nil
}

func (s *MemoryStore) Save(_ context.Context, conversationID string, attrs session.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	s.entries[conversationID] = memoryEntry{attrs: cloneAttrs(attrs), updatedAt: s.now()}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	delete(s.entries, conversationID)
	return nil
}

// Sweep удаляет разговоры старше ttl.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	removed := 0
	for id, e := range s.entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if s.expired(e) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
	s.log.Info("In-memory conversation storage closed")
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.updatedAt) > s.ttl
}

func cloneAttrs(attrs session.Map) session.Map {
	out := make(session.Map, len(attrs))
	for k, v := range attrs {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
