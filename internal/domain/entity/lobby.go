package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Статусы лобби
const (
	LobbyStatusWaiting  = "waiting"
	LobbyStatusPlaying  = "playing"
	LobbyStatusFinished = "finished"
)

// Уровни сложности
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// PlayerAnswer хранит один принятый ответ игрока
type PlayerAnswer struct {
	QuestionID     string    `json:"question_id"`
	Answer         string    `json:"answer"`
	IsCorrect      bool      `json:"is_correct"`
	TimeToAnswerMs int64     `json:"time_to_answer_ms"`
	ScoreGained    int       `json:"score_gained"`
	TimeBonus      int       `json:"time_bonus"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// Player представляет участника лобби.
// ConnectionID - идентификатор активного websocket-соединения;
// пустая строка означает, что игрок отключен, но остается в составе.
type Player struct {
	UserID       uint           `json:"user_id"`
	Name         string         `json:"name"`
	AvatarURL    string         `json:"avatar_url"`
	ConnectionID string         `json:"connection_id,omitempty"`
	Score        int            `json:"score"`
	Answers      []PlayerAnswer `json:"answers"`
}

// IsConnected возвращает true, если у игрока есть активное соединение
func (p *Player) IsConnected() bool {
	return p.ConnectionID != ""
}

// HasAnswered проверяет, отвечал ли игрок на данный вопрос
func (p *Player) HasAnswered(questionID string) bool {
	for i := range p.Answers {
		if p.Answers[i].QuestionID == questionID {
			return true
		}
	}
	return false
}

// PlayerList - состав лобби, сериализуемый в JSONB
type PlayerList []Player

// Scan реализует интерфейс sql.Scanner для PlayerList
func (l *PlayerList) Scan(value interface{}) error {
	if value == nil {
		*l = PlayerList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = PlayerList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для PlayerList
func (l PlayerList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// LobbySettings - настройки матча, задаваемые владельцем лобби
type LobbySettings struct {
	MaxPlayers    int    `json:"max_players"`
	QuestionCount int    `json:"question_count"`
	TimeLimitSec  int    `json:"time_limit_sec"`
	Difficulty    string `json:"difficulty"`
}

// DefaultLobbySettings возвращает настройки нового лобби
func DefaultLobbySettings() LobbySettings {
	return LobbySettings{
		MaxPlayers:    8,
		QuestionCount: 10,
		TimeLimitSec:  30,
		Difficulty:    DifficultyMedium,
	}
}

// Scan реализует интерфейс sql.Scanner для LobbySettings
func (s *LobbySettings) Scan(value interface{}) error {
	if value == nil {
		*s = DefaultLobbySettings()
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*s = DefaultLobbySettings()
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Value реализует интерфейс driver.Valuer для LobbySettings
func (s LobbySettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Lobby представляет игровую комнату.
// Состав игроков, настройки и снимок вопросов хранятся JSONB-документами,
// лобби читается и сохраняется целиком.
type Lobby struct {
	ID                   uint          `gorm:"primaryKey" json:"id"`
	Code                 string        `gorm:"size:6;not null;uniqueIndex" json:"code"`
	OwnerID              uint          `gorm:"not null;index" json:"owner_id"`
	Status               string        `gorm:"size:20;not null;default:'waiting'" json:"status"`
	Settings             LobbySettings `gorm:"type:jsonb;not null" json:"settings"`
	Players              PlayerList    `gorm:"type:jsonb;not null" json:"players"`
	Questions            QuestionList  `gorm:"type:jsonb;not null" json:"-"` // содержит правильные ответы, скрыт от клиента
	CurrentQuestionIndex int           `gorm:"not null;default:0" json:"current_question_index"`
	StartedAt            *time.Time    `gorm:"type:timestamp" json:"started_at,omitempty"`
	EndedAt              *time.Time    `gorm:"type:timestamp" json:"ended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Lobby) TableName() string {
	return "lobbies"
}

// FindPlayer возвращает указатель на игрока в составе лобби
func (l *Lobby) FindPlayer(userID uint) *Player {
	for i := range l.Players {
		if l.Players[i].UserID == userID {
			return &l.Players[i]
		}
	}
	return nil
}

// HasPlayer проверяет, состоит ли пользователь в лобби
func (l *Lobby) HasPlayer(userID uint) bool {
	return l.FindPlayer(userID) != nil
}

// IsFull возвращает true, если лобби заполнено
func (l *Lobby) IsFull() bool {
	return len(l.Players) >= l.Settings.MaxPlayers
}

// RemovePlayer удаляет игрока из состава. Возвращает false, если игрока не было.
func (l *Lobby) RemovePlayer(userID uint) bool {
	for i := range l.Players {
		if l.Players[i].UserID == userID {
			l.Players = append(l.Players[:i], l.Players[i+1:]...)
			return true
		}
	}
	return false
}
