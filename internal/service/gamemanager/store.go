package gamemanager

import (
	"fmt"
	"sync"

	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
)

// MatchStore хранит активные матчи по коду лобби.
// Экземпляр внедряется зависимостью, пакетного глобального состояния нет.
type MatchStore struct {
	mu      sync.RWMutex
	matches map[string]*MatchState
}

// NewMatchStore создает новое хранилище матчей
func NewMatchStore() *MatchStore {
	return &MatchStore{
		matches: make(map[string]*MatchState),
	}
}

// Create регистрирует новый матч.
// Возвращает ErrConflict, если матч с таким кодом уже идет.
func (s *MatchStore) Create(state *MatchState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.matches[state.Code]; exists {
		return fmt.Errorf("match %s already exists: %w", state.Code, apperrors.ErrConflict)
	}
	s.matches[state.Code] = state
	return nil
}

// Get возвращает состояние матча по коду
func (s *MatchStore) Get(code string) (*MatchState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.matches[code]
	return state, ok
}

// Delete удаляет матч из хранилища
func (s *MatchStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, code)
}

// Codes возвращает коды всех активных матчей
func (s *MatchStore) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.matches))
	for code := range s.matches {
		codes = append(codes, code)
	}
	return codes
}

// Len возвращает количество активных матчей
func (s *MatchStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
