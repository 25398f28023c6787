package gamemanager

import (
	"sort"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// Полезные нагрузки websocket-событий матча.
// Имена полей следуют клиентскому контракту, поэтому camelCase.

// QuestionPayload - вопрос, рассылаемый игрокам.
// Правильный ответ в нагрузку не попадает.
type QuestionPayload struct {
	QuestionID       string   `json:"questionId"`
	QuestionNumber   int      `json:"questionNumber"`
	TotalQuestions   int      `json:"totalQuestions"`
	TimeLimit        int      `json:"timeLimit"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Type             string   `json:"type"`
	Prompt           string   `json:"prompt,omitempty"`
	Choices          []string `json:"choices,omitempty"`
	QuestionImageURL string   `json:"questionImageUrl,omitempty"`
}

// NewQuestionPayload собирает нагрузку вопроса без правильного ответа
func NewQuestionPayload(q *entity.Question, number, total int) QuestionPayload {
	payload := QuestionPayload{
		QuestionID:     q.ID,
		QuestionNumber: number,
		TotalQuestions: total,
		TimeLimit:      q.TimeLimitSec,
		Category:       q.Category,
		Difficulty:     q.Difficulty,
		Type:           q.Kind,
	}
	if q.Kind == entity.QuestionKindVisual {
		payload.QuestionImageURL = q.ImageURL
	} else {
		payload.Prompt = q.Prompt
		payload.Choices = q.Choices
	}
	return payload
}

// GameStartPayload - объявление старта матча
type GameStartPayload struct {
	TotalQuestions int                  `json:"totalQuestions"`
	Settings       entity.LobbySettings `json:"settings"`
}

// AnswerResultPayload - персональный результат ответа
type AnswerResultPayload struct {
	QuestionID    string `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	ScoreGained   int    `json:"scoreGained"`
	TimeBonus     int    `json:"timeBonus"`
}

// ScoreboardEntry - строка таблицы счета
type ScoreboardEntry struct {
	UserID    uint   `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Score     int    `json:"score"`
}

// ScoreUpdatePayload - текущая таблица счета
type ScoreUpdatePayload struct {
	Players []ScoreboardEntry `json:"players"`
}

// NewScoreboard собирает таблицу счета в порядке состава
func NewScoreboard(players entity.PlayerList) []ScoreboardEntry {
	entries := make([]ScoreboardEntry, 0, len(players))
	for i := range players {
		entries = append(entries, ScoreboardEntry{
			UserID:    players[i].UserID,
			Name:      players[i].Name,
			AvatarURL: players[i].AvatarURL,
			Score:     players[i].Score,
		})
	}
	return entries
}

// ResultEntry - строка итогов матча
type ResultEntry struct {
	Rank      int    `json:"rank"`
	UserID    uint   `json:"userId"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Score     int    `json:"score"`
}

// GameEndPayload - итоги завершенного матча
type GameEndPayload struct {
	Results []ResultEntry    `json:"results"`
	Winner  *ScoreboardEntry `json:"winner,omitempty"`
	Reason  string           `json:"reason,omitempty"`
}

// RankedResults сортирует итоги по убыванию счета.
// Сортировка стабильная: при равенстве очков сохраняется порядок состава.
func RankedResults(players entity.PlayerList) []ResultEntry {
	ordered := make([]entity.Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	results := make([]ResultEntry, 0, len(ordered))
	for i := range ordered {
		results = append(results, ResultEntry{
			Rank:      i + 1,
			UserID:    ordered[i].UserID,
			Name:      ordered[i].Name,
			AvatarURL: ordered[i].AvatarURL,
			Score:     ordered[i].Score,
		})
	}
	return results
}
