package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
)

// MatchResultRepo реализует repository.MatchResultRepository
type MatchResultRepo struct {
	db *gorm.DB
}

// NewMatchResultRepo создает новый репозиторий архива матчей
func NewMatchResultRepo(db *gorm.DB) *MatchResultRepo {
	return &MatchResultRepo{db: db}
}

// Create сохраняет запись завершенного матча
func (r *MatchResultRepo) Create(result *entity.MatchResult) error {
	return r.db.Create(result).Error
}

// GetByID возвращает запись матча по ID
func (r *MatchResultRepo) GetByID(id uint) (*entity.MatchResult, error) {
	var result entity.MatchResult
	err := r.db.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

// ListByUser возвращает матчи, в которых участвовал игрок.
// Поиск по JSONB-снимку состава.
func (r *MatchResultRepo) ListByUser(userID uint, limit, offset int) ([]entity.MatchResult, error) {
	var results []entity.MatchResult
	err := r.db.
		Where("players @> ?", jsonbUserFilter(userID)).
		Order("ended_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error
	return results, err
}

// jsonbUserFilter собирает JSONB-фильтр вида [{"user_id": N}] для оператора @>
func jsonbUserFilter(userID uint) string {
	return fmt.Sprintf(`[{"user_id": %d}]`, userID)
}

// ListRecent возвращает последние завершенные матчи
func (r *MatchResultRepo) ListRecent(limit int) ([]entity.MatchResult, error) {
	var results []entity.MatchResult
	err := r.db.Order("ended_at DESC").Limit(limit).Find(&results).Error
	return results, err
}
