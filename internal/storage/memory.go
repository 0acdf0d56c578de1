package storage

import (
	"context"
	"sync"
)

// MemoryStorage реализует TokenStore в памяти.
type MemoryStorage struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStorage создаёт новый MemoryStorage.
func NewMemoryStorage(token string) *MemoryStorage {
	return &MemoryStorage{token: token}
}

// Token возвращает токен.
func (s *MemoryStorage) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, nil
}

// SaveToken сохраняет токен.
func (s *MemoryStorage) SaveToken(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return nil
}

// ClearToken удаляет токен.
func (s *MemoryStorage) ClearToken(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	return nil
}
