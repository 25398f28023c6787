package gamemanager

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// Мок-объекты для интерфейсов репозиториев

type MockLobbyRepository struct {
	mock.Mock
}

func (m *MockLobbyRepository) Create(lobby *entity.Lobby) error {
	args := m.Called(lobby)
	return args.Error(0)
}

func (m *MockLobbyRepository) GetByCode(code string) (*entity.Lobby, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lobby), args.Error(1)
}

func (m *MockLobbyRepository) Update(lobby *entity.Lobby) error {
	args := m.Called(lobby)
	return args.Error(0)
}

func (m *MockLobbyRepository) Delete(code string) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockLobbyRepository) ListWaiting(limit int) ([]entity.Lobby, error) {
	args := m.Called(limit)
	return args.Get(0).([]entity.Lobby), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(username string) (*entity.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementGames(userIDs []uint) error {
	args := m.Called(userIDs)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementWins(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) GetLeaderboard(limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

type MockMatchResultRepository struct {
	mock.Mock
}

func (m *MockMatchResultRepository) Create(result *entity.MatchResult) error {
	args := m.Called(result)
	return args.Error(0)
}

func (m *MockMatchResultRepository) GetByID(id uint) (*entity.MatchResult, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.MatchResult), args.Error(1)
}

func (m *MockMatchResultRepository) ListByUser(userID uint, limit, offset int) ([]entity.MatchResult, error) {
	args := m.Called(userID, limit, offset)
	return args.Get(0).([]entity.MatchResult), args.Error(1)
}

func (m *MockMatchResultRepository) ListRecent(limit int) ([]entity.MatchResult, error) {
	args := m.Called(limit)
	return args.Get(0).([]entity.MatchResult), args.Error(1)
}

// recordedEvent - одно перехваченное websocket-событие
type recordedEvent struct {
	Target string
	Type   string
	Data   interface{}
}

// recordingBroadcaster перехватывает события матча для проверок.
// Потокобезопасен: события приходят из горутин таймеров.
type recordingBroadcaster struct {
	mu         sync.Mutex
	broadcasts []recordedEvent
	unicasts   []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToLobby(code string, eventType string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcasts = append(b.broadcasts, recordedEvent{Target: code, Type: eventType, Data: data})
}

func (b *recordingBroadcaster) SendEventToUser(userID uint, eventType string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unicasts = append(b.unicasts, recordedEvent{Target: fmt.Sprintf("%d", userID), Type: eventType, Data: data})
	return nil
}

// countBroadcasts считает рассылки данного типа
func (b *recordingBroadcaster) countBroadcasts(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, e := range b.broadcasts {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// lastBroadcast возвращает последнюю рассылку данного типа
func (b *recordingBroadcaster) lastBroadcast(eventType string) (recordedEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.broadcasts) - 1; i >= 0; i-- {
		if b.broadcasts[i].Type == eventType {
			return b.broadcasts[i], true
		}
	}
	return recordedEvent{}, false
}

// countUnicasts считает персональные отправки данного типа
func (b *recordingBroadcaster) countUnicasts(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	count := 0
	for _, e := range b.unicasts {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// stubQuestionProvider отдает заранее заданный набор вопросов
type stubQuestionProvider struct {
	questions []entity.Question
}

func (p *stubQuestionProvider) PrepareQuestions(ctx context.Context, count int, difficulty string, timeLimitSec int) []entity.Question {
	return p.questions
}

// makeTestQuestions собирает текстовые вопросы с заданным лимитом времени
func makeTestQuestions(n, timeLimitSec int) []entity.Question {
	questions := make([]entity.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, entity.Question{
			ID:            fmt.Sprintf("q-%d", i+1),
			Kind:          entity.QuestionKindText,
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Choices:       entity.StringArray{"A", "B", "C", "D"},
			CorrectAnswer: "A",
			Category:      "General",
			Difficulty:    entity.DifficultyMedium,
			TimeLimitSec:  timeLimitSec,
		})
	}
	return questions
}

// makeTestPlayers собирает подключенных игроков с нулевым счетом
func makeTestPlayers(userIDs ...uint) entity.PlayerList {
	players := make(entity.PlayerList, 0, len(userIDs))
	for _, id := range userIDs {
		players = append(players, entity.Player{
			UserID:       id,
			Name:         fmt.Sprintf("player-%d", id),
			AvatarURL:    fmt.Sprintf("https://www.placemonkeys.com/300?random=%d", id),
			ConnectionID: fmt.Sprintf("conn-%d", id),
		})
	}
	return players
}
