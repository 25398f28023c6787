package entity

import "time"

// MatchResult - архивная запись завершенного матча.
// Снимок состава с финальными счетами хранится JSONB-документом.
type MatchResult struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	LobbyCode      string     `gorm:"size:6;not null;index" json:"lobby_code"`
	WinnerID       *uint      `gorm:"index" json:"winner_id,omitempty"`
	TotalQuestions int        `gorm:"not null" json:"total_questions"`
	Players        PlayerList `gorm:"type:jsonb;not null" json:"players"`
	StartedAt      time.Time  `gorm:"type:timestamp;not null" json:"started_at"`
	EndedAt        time.Time  `gorm:"type:timestamp;not null" json:"ended_at"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (MatchResult) TableName() string {
	return "match_results"
}
