package gamemanager

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
	"github.com/yourusername/monkeymind-api/internal/websocket"
)

type lifecycleFixture struct {
	lifecycle   *Lifecycle
	advancer    *Advancer
	store       *MatchStore
	broadcaster *recordingBroadcaster
	lobbyRepo   *MockLobbyRepository
	userRepo    *MockUserRepository
	resultRepo  *MockMatchResultRepository
}

// Таймеры отодвинуты на час: переходами управляют сами тесты
func newLifecycleFixture(t *testing.T, questions []entity.Question) *lifecycleFixture {
	t.Helper()

	cfg := testAdvancerConfig()
	cfg.FirstQuestionDelay = time.Hour
	cfg.FallbackBuffer = time.Hour
	cfg.GracePeriod = time.Hour

	store := NewMatchStore()
	broadcaster := &recordingBroadcaster{}
	lobbyRepo := new(MockLobbyRepository)
	userRepo := new(MockUserRepository)
	resultRepo := new(MockMatchResultRepository)

	deps := &Dependencies{
		LobbyRepo:   lobbyRepo,
		UserRepo:    userRepo,
		ResultRepo:  resultRepo,
		Provider:    &stubQuestionProvider{questions: questions},
		Broadcaster: broadcaster,
	}
	advancer := NewAdvancer(cfg, store, deps)

	return &lifecycleFixture{
		lifecycle:   NewLifecycle(cfg, store, deps, advancer),
		advancer:    advancer,
		store:       store,
		broadcaster: broadcaster,
		lobbyRepo:   lobbyRepo,
		userRepo:    userRepo,
		resultRepo:  resultRepo,
	}
}

func waitingLobby(code string, ownerID uint, players entity.PlayerList) *entity.Lobby {
	return &entity.Lobby{
		ID:       1,
		Code:     code,
		OwnerID:  ownerID,
		Status:   entity.LobbyStatusWaiting,
		Settings: entity.DefaultLobbySettings(),
		Players:  players,
	}
}

// startedState кладет в хранилище активный матч с уже разосланным вопросом
func startedState(t *testing.T, f *lifecycleFixture, code string, questions []entity.Question, players entity.PlayerList) *MatchState {
	t.Helper()

	state := newActiveState(code, questions, players)
	state.QuestionStartedAt = time.Now()
	require.NoError(t, f.store.Create(state))
	return state
}

func TestStartMatch_OnlyOwnerCanStart(t *testing.T) {
	f := newLifecycleFixture(t, makeTestQuestions(1, 30))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(waitingLobby("ABC123", 1, makeTestPlayers(1, 2)), nil)

	err := f.lifecycle.StartMatch(context.Background(), "ABC123", 2)

	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Старт матча не владельцем должен отклоняться")
}

func TestStartMatch_RequiresWaitingStatus(t *testing.T) {
	f := newLifecycleFixture(t, makeTestQuestions(1, 30))
	lobby := waitingLobby("ABC123", 1, makeTestPlayers(1, 2))
	lobby.Status = entity.LobbyStatusPlaying
	f.lobbyRepo.On("GetByCode", "ABC123").Return(lobby, nil)

	err := f.lifecycle.StartMatch(context.Background(), "ABC123", 1)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestStartMatch_RequiresTwoPlayers(t *testing.T) {
	f := newLifecycleFixture(t, makeTestQuestions(1, 30))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(waitingLobby("ABC123", 1, makeTestPlayers(1)), nil)

	err := f.lifecycle.StartMatch(context.Background(), "ABC123", 1)

	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestStartMatch_LobbyNotFound(t *testing.T) {
	f := newLifecycleFixture(t, makeTestQuestions(1, 30))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(nil, apperrors.ErrNotFound)

	err := f.lifecycle.StartMatch(context.Background(), "ABC123", 1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStartMatch_Success(t *testing.T) {
	// Arrange: у игроков остались счет и ответы прошлого матча
	f := newLifecycleFixture(t, makeTestQuestions(3, 30))
	players := makeTestPlayers(1, 2)
	players[0].Score = 250
	players[0].Answers = []entity.PlayerAnswer{{QuestionID: "old", Answer: "A"}}
	lobby := waitingLobby("ABC123", 1, players)
	f.lobbyRepo.On("GetByCode", "ABC123").Return(lobby, nil)
	f.lobbyRepo.On("Update", mock.Anything).Return(nil)

	// Act
	err := f.lifecycle.StartMatch(context.Background(), "ABC123", 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.LobbyStatusPlaying, lobby.Status)
	require.NotNil(t, lobby.StartedAt)
	assert.Len(t, lobby.Questions, 3)

	state, ok := f.store.Get("ABC123")
	require.True(t, ok)
	assert.True(t, state.IsActive)
	assert.Equal(t, 0, state.QuestionIndex)
	for i := range state.Players {
		assert.Equal(t, 0, state.Players[i].Score, "Счет прошлого матча должен сбрасываться")
		assert.Empty(t, state.Players[i].Answers)
	}

	event, ok := f.broadcaster.lastBroadcast(websocket.EventGameStart)
	require.True(t, ok)
	payload, ok := event.Data.(GameStartPayload)
	require.True(t, ok)
	assert.Equal(t, 3, payload.TotalQuestions)
}

func TestSubmitAnswer_ScoresAndBroadcasts(t *testing.T) {
	// Arrange
	f := newLifecycleFixture(t, nil)
	questions := makeTestQuestions(2, 30)
	state := startedState(t, f, "ABC123", questions, makeTestPlayers(1, 2))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(waitingLobby("ABC123", 1, nil), nil)
	f.lobbyRepo.On("Update", mock.Anything).Return(nil)

	// Act
	result, err := f.lifecycle.SubmitAnswer("ABC123", 1, "q-1", "A")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, "A", result.CorrectAnswer)
	assert.GreaterOrEqual(t, result.ScoreGained, 100)
	assert.LessOrEqual(t, result.ScoreGained, 150)

	state.lock()
	player := state.findPlayerLocked(1)
	score := player.Score
	answers := len(player.Answers)
	state.unlock()
	assert.Equal(t, result.ScoreGained, score)
	assert.Equal(t, 1, answers)

	assert.Equal(t, 1, f.broadcaster.countUnicasts(websocket.EventAnswerResult), "Результат ответа отправляется лично")
	assert.Equal(t, 1, f.broadcaster.countBroadcasts(websocket.EventScoreUpdate), "Таблица счета рассылается всем")
}

func TestSubmitAnswer_WrongAnswerScoresZero(t *testing.T) {
	f := newLifecycleFixture(t, nil)
	startedState(t, f, "ABC123", makeTestQuestions(1, 30), makeTestPlayers(1, 2))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(nil, apperrors.ErrNotFound)

	result, err := f.lifecycle.SubmitAnswer("ABC123", 1, "q-1", "B")

	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 0, result.ScoreGained)
	assert.Equal(t, 0, result.TimeBonus)
}

func TestSubmitAnswer_StaleQuestionLeavesStateUntouched(t *testing.T) {
	// Arrange
	f := newLifecycleFixture(t, nil)
	state := startedState(t, f, "ABC123", makeTestQuestions(2, 30), makeTestPlayers(1, 2))

	// Act: ответ на уже закрытый вопрос
	_, err := f.lifecycle.SubmitAnswer("ABC123", 1, "q-0-stale", "A")

	// Assert
	assert.ErrorIs(t, err, ErrStaleQuestion)

	state.lock()
	player := state.findPlayerLocked(1)
	state.unlock()
	assert.Empty(t, player.Answers, "Устаревший ответ не должен менять состояние")
	assert.Equal(t, 0, player.Score)
	assert.Equal(t, 0, f.broadcaster.countBroadcasts(websocket.EventScoreUpdate))
}

func TestSubmitAnswer_DuplicateRejected(t *testing.T) {
	f := newLifecycleFixture(t, nil)
	startedState(t, f, "ABC123", makeTestQuestions(1, 30), makeTestPlayers(1, 2))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(nil, apperrors.ErrNotFound)

	first, err := f.lifecycle.SubmitAnswer("ABC123", 1, "q-1", "A")
	require.NoError(t, err)

	_, err = f.lifecycle.SubmitAnswer("ABC123", 1, "q-1", "B")

	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	// Счет остался от первого ответа
	state, _ := f.store.Get("ABC123")
	state.lock()
	score := state.findPlayerLocked(1).Score
	state.unlock()
	assert.Equal(t, first.ScoreGained, score)
}

func TestSubmitAnswer_RejectsInvalidAnswer(t *testing.T) {
	f := newLifecycleFixture(t, nil)
	startedState(t, f, "ABC123", makeTestQuestions(1, 30), makeTestPlayers(1, 2))

	_, err := f.lifecycle.SubmitAnswer("ABC123", 1, "q-1", "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.lifecycle.SubmitAnswer("ABC123", 1, "q-1", strings.Repeat("x", 501))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Отклоненные ответы не попадают в историю игрока
	state, _ := f.store.Get("ABC123")
	state.lock()
	answered := len(state.findPlayerLocked(1).Answers)
	state.unlock()
	assert.Zero(t, answered)
}

func TestSubmitAnswer_UnknownPlayer(t *testing.T) {
	f := newLifecycleFixture(t, nil)
	startedState(t, f, "ABC123", makeTestQuestions(1, 30), makeTestPlayers(1, 2))

	_, err := f.lifecycle.SubmitAnswer("ABC123", 99, "q-1", "A")

	assert.ErrorIs(t, err, ErrNotInMatch)
}

func TestSubmitAnswer_NoActiveMatch(t *testing.T) {
	f := newLifecycleFixture(t, nil)

	_, err := f.lifecycle.SubmitAnswer("NOPE42", 1, "q-1", "A")

	assert.ErrorIs(t, err, ErrMatchNotActive)
}

func TestEndMatch_DeclaresFirstMaxWinner(t *testing.T) {
	// Arrange: счет равный, победителем объявляется первый по порядку состава
	f := newLifecycleFixture(t, nil)
	players := makeTestPlayers(7, 3)
	players[0].Score = 140
	players[1].Score = 140
	state := startedState(t, f, "ABC123", makeTestQuestions(1, 30), players)
	state.lock()
	state.QuestionIndex = 1
	state.unlock()

	f.lobbyRepo.On("GetByCode", "ABC123").Return(waitingLobby("ABC123", 7, players), nil)
	f.lobbyRepo.On("Update", mock.Anything).Return(nil)
	f.resultRepo.On("Create", mock.Anything).Return(nil)
	f.userRepo.On("IncrementGames", []uint{7, 3}).Return(nil)
	f.userRepo.On("IncrementWins", uint(7)).Return(nil)

	// Act
	err := f.lifecycle.EndMatch("ABC123", EndReasonCompleted)

	// Assert
	require.NoError(t, err)
	_, ok := f.store.Get("ABC123")
	assert.False(t, ok, "Завершенный матч удаляется из хранилища")

	event, ok := f.broadcaster.lastBroadcast(websocket.EventGameEnd)
	require.True(t, ok)
	payload, ok := event.Data.(GameEndPayload)
	require.True(t, ok)
	require.NotNil(t, payload.Winner)
	assert.Equal(t, uint(7), payload.Winner.UserID, "При равном счете побеждает первый по порядку вступления")
	assert.Equal(t, EndReasonCompleted, payload.Reason)
	require.Len(t, payload.Results, 2)
	assert.Equal(t, 1, payload.Results[0].Rank)
	assert.Equal(t, uint(7), payload.Results[0].UserID)

	f.userRepo.AssertCalled(t, "IncrementGames", []uint{7, 3})
	f.userRepo.AssertCalled(t, "IncrementWins", uint(7))
	f.resultRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestEndMatch_Idempotent(t *testing.T) {
	// Arrange
	f := newLifecycleFixture(t, nil)
	startedState(t, f, "ABC123", makeTestQuestions(1, 30), makeTestPlayers(1, 2))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(nil, apperrors.ErrNotFound)
	f.resultRepo.On("Create", mock.Anything).Return(nil)
	f.userRepo.On("IncrementGames", mock.Anything).Return(nil)
	f.userRepo.On("IncrementWins", mock.Anything).Return(nil)

	// Act
	require.NoError(t, f.lifecycle.EndMatch("ABC123", EndReasonCompleted))
	require.NoError(t, f.lifecycle.EndMatch("ABC123", EndReasonCompleted))
	require.NoError(t, f.lifecycle.EndMatch("GHOST1", EndReasonCompleted))

	// Assert: итоги сохранены и разосланы один раз
	f.resultRepo.AssertNumberOfCalls(t, "Create", 1)
	assert.Equal(t, 1, f.broadcaster.countBroadcasts(websocket.EventGameEnd))
}

func TestSetPlayerConnection(t *testing.T) {
	f := newLifecycleFixture(t, nil)
	state := startedState(t, f, "ABC123", makeTestQuestions(1, 30), makeTestPlayers(1, 2))

	f.lifecycle.SetPlayerConnection("ABC123", 1, "")
	f.lifecycle.SetPlayerConnection("ABC123", 2, "conn-new")
	f.lifecycle.SetPlayerConnection("GHOST1", 1, "x") // матч отсутствует, no-op

	state.lock()
	defer state.unlock()
	assert.False(t, state.findPlayerLocked(1).IsConnected())
	assert.Equal(t, "conn-new", state.findPlayerLocked(2).ConnectionID)
}

func TestSweeper_EndsStaleMatches(t *testing.T) {
	// Arrange: матч давно без активности
	f := newLifecycleFixture(t, nil)
	state := startedState(t, f, "ABC123", makeTestQuestions(1, 30), makeTestPlayers(1, 2))
	state.lock()
	state.StartedAt = time.Now().Add(-2 * time.Hour)
	state.LastActivityAt = time.Now().Add(-2 * time.Hour)
	state.unlock()

	f.lobbyRepo.On("GetByCode", "ABC123").Return(nil, apperrors.ErrNotFound)
	f.resultRepo.On("Create", mock.Anything).Return(nil)
	f.userRepo.On("IncrementGames", mock.Anything).Return(nil)
	f.userRepo.On("IncrementWins", mock.Anything).Return(nil)

	// Act
	f.lifecycle.sweepOnce()

	// Assert
	_, ok := f.store.Get("ABC123")
	assert.False(t, ok, "Зависший матч должен быть принудительно завершен")

	event, ok := f.broadcaster.lastBroadcast(websocket.EventGameEnd)
	require.True(t, ok)
	payload := event.Data.(GameEndPayload)
	assert.Equal(t, EndReasonTimeout, payload.Reason)
}

func TestFullMatch_TwoPlayersOneQuestion(t *testing.T) {
	// Arrange: короткие тайминги, один вопрос
	f := newLifecycleFixture(t, makeTestQuestions(1, 30))
	cfg := f.lifecycle.config
	cfg.FirstQuestionDelay = 10 * time.Millisecond
	cfg.GracePeriod = 20 * time.Millisecond
	cfg.FallbackBuffer = 5 * time.Second

	lobby := waitingLobby("ABC123", 1, makeTestPlayers(1, 2))
	f.lobbyRepo.On("GetByCode", "ABC123").Return(lobby, nil)
	f.lobbyRepo.On("Update", mock.Anything).Return(nil)
	f.resultRepo.On("Create", mock.Anything).Return(nil)
	f.userRepo.On("IncrementGames", mock.Anything).Return(nil)
	f.userRepo.On("IncrementWins", mock.Anything).Return(nil)

	// Act: старт, оба отвечают, льготный таймер закрывает вопрос
	require.NoError(t, f.lifecycle.StartMatch(context.Background(), "ABC123", 1))

	require.Eventually(t, func() bool {
		return f.broadcaster.countBroadcasts(websocket.EventNewQuestion) == 1
	}, time.Second, 5*time.Millisecond, "Первый вопрос должен быть разослан после задержки")

	first, err := f.lifecycle.SubmitAnswer("ABC123", 1, "q-1", "A")
	require.NoError(t, err)
	second, err := f.lifecycle.SubmitAnswer("ABC123", 2, "q-1", "B")
	require.NoError(t, err)

	select {
	case code := <-f.advancer.MatchDone():
		require.Equal(t, "ABC123", code)
	case <-time.After(time.Second):
		t.Fatal("Ожидался сигнал завершения матча после последнего вопроса")
	}
	require.NoError(t, f.lifecycle.EndMatch("ABC123", EndReasonCompleted))

	// Assert: правильный ответ побеждает неправильный
	assert.True(t, first.IsCorrect)
	assert.False(t, second.IsCorrect)

	event, ok := f.broadcaster.lastBroadcast(websocket.EventGameEnd)
	require.True(t, ok)
	payload := event.Data.(GameEndPayload)
	require.NotNil(t, payload.Winner)
	assert.Equal(t, uint(1), payload.Winner.UserID)
	assert.Equal(t, first.ScoreGained, payload.Winner.Score)
}
