package repository

import (
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// LobbyRepository определяет методы для работы с лобби
type LobbyRepository interface {
	Create(lobby *entity.Lobby) error
	GetByCode(code string) (*entity.Lobby, error)
	// Update сохраняет лобби целиком, включая JSONB-поля состава и вопросов
	Update(lobby *entity.Lobby) error
	Delete(code string) error
	// ListWaiting возвращает открытые лобби в статусе waiting
	ListWaiting(limit int) ([]entity.Lobby, error)
}
