package postgres

import (
	"errors"
	"log"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
)

// Код ошибки PostgreSQL для нарушения уникальности
const pgUniqueViolationCode = "23505"

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий игроков
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового игрока.
// Возвращает ErrConflict, если имя уже занято (уникальный индекс username).
func (r *UserRepo) Create(user *entity.User) error {
	err := r.db.Create(user).Error
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolationCode {
			log.Printf("[UserRepo] Имя '%s' уже занято", user.Username)
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID возвращает игрока по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername возвращает игрока по имени
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update обновляет информацию об игроке
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// IncrementGames атомарно увеличивает счетчик сыгранных матчей для всех перечисленных игроков
func (r *UserRepo) IncrementGames(userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.Model(&entity.User{}).
		Where("id IN ?", userIDs).
		UpdateColumn("total_games", gorm.Expr("total_games + ?", 1)).
		Error
}

// IncrementWins атомарно увеличивает счетчик побед
func (r *UserRepo) IncrementWins(userID uint) error {
	return r.db.Model(&entity.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_wins", gorm.Expr("total_wins + ?", 1)).
		Error
}

// GetLeaderboard возвращает игроков для лидерборда с пагинацией и общим количеством,
// отсортированных по количеству побед.
func (r *UserRepo) GetLeaderboard(limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	// Используем транзакцию для согласованности чтения данных и общего количества
	tx := r.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, 0, tx.Error
	}

	err := tx.Model(&entity.User{}).Count(&total).Error
	if err != nil {
		tx.Rollback()
		return nil, 0, err
	}

	// Сортируем по total_wins DESC, затем total_games и ID для стабильности
	err = tx.Order("total_wins DESC, total_games DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Select("id", "username", "avatar_url", "total_games", "total_wins").
		Find(&users).Error
	if err != nil {
		tx.Rollback()
		return nil, 0, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
