package service

import (
	"github.com/stretchr/testify/mock"
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
)

// Мок-объекты для интерфейсов репозиториев

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
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

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
