package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User представляет игрока в системе.
// Аутентификация строится на паре имя + 4-значный PIN.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Username   string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Pin        string `gorm:"size:100;not null" json:"-"`
	AvatarURL  string `gorm:"size:255;not null;default:''" json:"avatar_url"`
	TotalGames int64  `gorm:"not null;default:0" json:"total_games"`
	TotalWins  int64  `gorm:"not null;default:0;index:idx_users_leaderboard" json:"total_wins"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// BeforeSave хеширует PIN перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	// Хешируем PIN только если он:
	// 1. Не пустой
	// 2. Не является уже bcrypt-хешем (начинается с "$2a$", "$2b$" или "$2y$")
	if len(u.Pin) > 0 && !strings.HasPrefix(u.Pin, "$2a$") &&
		!strings.HasPrefix(u.Pin, "$2b$") && !strings.HasPrefix(u.Pin, "$2y$") {
		hashedPin, err := bcrypt.GenerateFromPassword([]byte(u.Pin), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] Ошибка при хешировании PIN для username=%s: %v", u.Username, err)
			return err
		}
		u.Pin = string(hashedPin)
	}
	return nil
}

// CheckPin проверяет, соответствует ли переданный PIN сохраненному хешу
func (u *User) CheckPin(pin string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Pin), []byte(pin))
	return err == nil
}
