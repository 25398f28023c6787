package service

import (
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/domain/repository"
)

// UserService предоставляет методы для работы с профилями и лидербордом
type UserService struct {
	userRepo   repository.UserRepository
	resultRepo repository.MatchResultRepository
}

// NewUserService создает новый сервис игроков
func NewUserService(userRepo repository.UserRepository, resultRepo repository.MatchResultRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		resultRepo: resultRepo,
	}
}

// GetProfile возвращает профиль игрока
func (s *UserService) GetProfile(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// LeaderboardEntry - строка лидерборда
type LeaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url"`
	TotalGames int64  `json:"total_games"`
	TotalWins  int64  `json:"total_wins"`
}

// GetLeaderboard возвращает страницу лидерборда с общим количеством игроков.
// Ранг абсолютный, с учетом смещения страницы.
func (s *UserService) GetLeaderboard(limit, offset int) ([]LeaderboardEntry, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.userRepo.GetLeaderboard(limit, offset)
	if err != nil {
		return nil, 0, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:       offset + i + 1,
			UserID:     users[i].ID,
			Username:   users[i].Username,
			AvatarURL:  users[i].AvatarURL,
			TotalGames: users[i].TotalGames,
			TotalWins:  users[i].TotalWins,
		})
	}
	return entries, total, nil
}

// GetMatchHistory возвращает матчи, в которых участвовал игрок
func (s *UserService) GetMatchHistory(userID uint, limit, offset int) ([]entity.MatchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.resultRepo.ListByUser(userID, limit, offset)
}
