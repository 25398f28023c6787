package gamemanager

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	"github.com/yourusername/monkeymind-api/internal/domain/repository"
)

// Config содержит тайминги игрового цикла
type Config struct {
	// Задержка перед первым вопросом после gameStart
	FirstQuestionDelay time.Duration

	// Льготный период после того, как ответили все подключенные игроки
	GracePeriod time.Duration

	// Запас сверх лимита вопроса для резервного таймера
	FallbackBuffer time.Duration

	// Максимальная длительность матча, после которой он принудительно завершается
	MaxMatchDuration time.Duration

	// Порог бездействия, после которого матч считается брошенным
	StaleAfter time.Duration

	// Периодичность фоновой проверки зависших матчей
	SweepInterval time.Duration
}

// DefaultConfig возвращает конфигурацию игрового цикла по умолчанию
func DefaultConfig() *Config {
	return &Config{
		FirstQuestionDelay: 3 * time.Second,
		GracePeriod:        3 * time.Second,
		FallbackBuffer:     5 * time.Second,
		MaxMatchDuration:   30 * time.Minute,
		StaleAfter:         30 * time.Minute,
		SweepInterval:      10 * time.Minute,
	}
}

// Broadcaster - всё, что ядру матча нужно от websocket-слоя
type Broadcaster interface {
	// BroadcastToLobby отправляет событие всем клиентам комнаты лобби
	BroadcastToLobby(code string, eventType string, data interface{})

	// SendEventToUser отправляет событие конкретному игроку
	SendEventToUser(userID uint, eventType string, data interface{}) error
}

// QuestionProvider собирает набор вопросов перед стартом матча
type QuestionProvider interface {
	// PrepareQuestions не возвращает ошибку: при отказе внешнего
	// источника провайдер обязан отдать резервные вопросы
	PrepareQuestions(ctx context.Context, count int, difficulty string, timeLimitSec int) []entity.Question
}

// Dependencies содержит внешние зависимости игрового ядра
type Dependencies struct {
	LobbyRepo   repository.LobbyRepository
	UserRepo    repository.UserRepository
	ResultRepo  repository.MatchResultRepository
	Provider    QuestionProvider
	Broadcaster Broadcaster
}

// MatchState - состояние одного активного матча.
// Живет только в памяти процесса: при рестарте активные матчи теряются,
// фоновая зачистка закрывает осиротевшие лобби в базе.
type MatchState struct {
	mu sync.Mutex

	// Код лобби, он же ключ матча
	Code string

	// Снимок вопросов на момент старта
	Questions []entity.Question

	// Авторитетный состав матча: счет и принятые ответы
	Players entity.PlayerList

	// Индекс текущего вопроса
	QuestionIndex int

	// Момент старта матча
	StartedAt time.Time

	// Момент рассылки текущего вопроса (серверные часы)
	QuestionStartedAt time.Time

	// Момент последней активности (ответ или переход)
	LastActivityAt time.Time

	// Матч идет; false после завершения
	IsActive bool

	// Переход к следующему вопросу уже запланирован
	AdvancePending bool

	// Резервный таймер текущего вопроса (лимит + запас)
	fallbackTimer *time.Timer

	// Таймер льготного периода
	graceTimer *time.Timer
}

// lock захватывает мьютекс состояния
func (s *MatchState) lock() {
	s.mu.Lock()
}

// unlock освобождает мьютекс состояния
func (s *MatchState) unlock() {
	s.mu.Unlock()
}

// stopTimersLocked останавливает оба таймера. Вызывается под мьютексом.
// Уже сработавший таймер остановить нельзя, но его колбэк отсечется
// проверкой индекса в advance.
func (s *MatchState) stopTimersLocked() {
	if s.fallbackTimer != nil {
		s.fallbackTimer.Stop()
		s.fallbackTimer = nil
	}
	if s.graceTimer != nil {
		s.graceTimer.Stop()
		s.graceTimer = nil
	}
}

// currentQuestionLocked возвращает текущий вопрос. Вызывается под мьютексом.
func (s *MatchState) currentQuestionLocked() *entity.Question {
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.QuestionIndex]
}

// findPlayerLocked возвращает игрока состава. Вызывается под мьютексом.
func (s *MatchState) findPlayerLocked(userID uint) *entity.Player {
	for i := range s.Players {
		if s.Players[i].UserID == userID {
			return &s.Players[i]
		}
	}
	return nil
}

// connectedCountLocked считает игроков с активным соединением. Вызывается под мьютексом.
func (s *MatchState) connectedCountLocked() int {
	count := 0
	for i := range s.Players {
		if s.Players[i].IsConnected() {
			count++
		}
	}
	return count
}

// answeredCountLocked считает игроков, ответивших на вопрос. Вызывается под мьютексом.
func (s *MatchState) answeredCountLocked(questionID string) int {
	count := 0
	for i := range s.Players {
		if s.Players[i].HasAnswered(questionID) {
			count++
		}
	}
	return count
}
