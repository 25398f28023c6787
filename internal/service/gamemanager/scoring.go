package gamemanager

import (
	"math"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// Базовые очки за правильный ответ и потолок бонуса за скорость
const (
	baseScore    = 100
	maxTimeBonus = 50
)

// AnswerScore - результат оценки одного ответа
type AnswerScore struct {
	IsCorrect bool
	Points    int
	TimeBonus int
}

// ScoreAnswer оценивает ответ игрока.
// Чистая функция: сравнение строгое строковое, время ответа обрезается
// в границы [0, лимит вопроса] до расчета бонуса. Неправильный ответ
// всегда стоит 0, правильный - 100 плюс бонус за скорость до 50.
func ScoreAnswer(q *entity.Question, answer string, timeToAnswerMs int64) AnswerScore {
	if !q.IsCorrect(answer) {
		return AnswerScore{}
	}

	limitMs := q.TimeLimitMs()
	t := clampMs(timeToAnswerMs, limitMs)

	bonus := 0
	if limitMs > 0 {
		timeFraction := 1 - float64(t)/float64(limitMs)
		bonus = int(math.Floor(timeFraction * maxTimeBonus))
	}

	return AnswerScore{
		IsCorrect: true,
		Points:    baseScore + bonus,
		TimeBonus: bonus,
	}
}

// clampMs обрезает время ответа в границы [0, limitMs]
func clampMs(ms, limitMs int64) int64 {
	if ms < 0 {
		return 0
	}
	if ms > limitMs {
		return limitMs
	}
	return ms
}
