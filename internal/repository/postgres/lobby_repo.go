package postgres

import (
	"errors"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
)

// LobbyRepo реализует repository.LobbyRepository
type LobbyRepo struct {
	db *gorm.DB
}

// NewLobbyRepo создает новый репозиторий лобби
func NewLobbyRepo(db *gorm.DB) *LobbyRepo {
	return &LobbyRepo{db: db}
}

// Create создает новое лобби.
// Возвращает ErrConflict при коллизии кода (уникальный индекс code),
// вызывающая сторона перегенерирует код и повторяет.
func (r *LobbyRepo) Create(lobby *entity.Lobby) error {
	err := r.db.Create(lobby).Error
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Printf("[LobbyRepo] Коллизия кода лобби '%s'", lobby.Code)
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetByCode возвращает лобби по коду
func (r *LobbyRepo) GetByCode(code string) (*entity.Lobby, error) {
	var lobby entity.Lobby
	err := r.db.Where("code = ?", code).First(&lobby).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &lobby, nil
}

// Update сохраняет лобби целиком, включая JSONB-поля состава и вопросов
func (r *LobbyRepo) Update(lobby *entity.Lobby) error {
	return r.db.Save(lobby).Error
}

// Delete удаляет лобби по коду
func (r *LobbyRepo) Delete(code string) error {
	result := r.db.Where("code = ?", code).Delete(&entity.Lobby{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListWaiting возвращает открытые лобби в статусе waiting
func (r *LobbyRepo) ListWaiting(limit int) ([]entity.Lobby, error) {
	var lobbies []entity.Lobby
	err := r.db.Where("status = ?", entity.LobbyStatusWaiting).
		Order("created_at DESC").
		Limit(limit).
		Find(&lobbies).Error
	return lobbies, err
}
