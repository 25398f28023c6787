package repository

import (
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с игроками
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	// IncrementGames атомарно увеличивает total_games для всех перечисленных игроков
	IncrementGames(userIDs []uint) error
	// IncrementWins атомарно увеличивает total_wins победителя
	IncrementWins(userID uint) error
	// GetLeaderboard возвращает игроков для лидерборда с пагинацией и общим количеством
	GetLeaderboard(limit, offset int) ([]entity.User, int64, error)
}
