package repository

import (
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// MatchResultRepository определяет методы для работы с архивом матчей
type MatchResultRepository interface {
	Create(result *entity.MatchResult) error
	GetByID(id uint) (*entity.MatchResult, error)
	// ListByUser возвращает матчи, в которых участвовал игрок
	ListByUser(userID uint, limit, offset int) ([]entity.MatchResult, error)
	// ListRecent возвращает последние завершенные матчи
	ListRecent(limit int) ([]entity.MatchResult, error)
}
