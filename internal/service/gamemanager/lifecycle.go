package gamemanager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/monkeymind-api/internal/domain/entity"
	apperrors "github.com/yourusername/monkeymind-api/internal/pkg/errors"
	"github.com/yourusername/monkeymind-api/internal/websocket"
)

// Ошибки игрового цикла
var (
	// ErrMatchNotActive возвращается при действии над незапущенным или завершенным матчем
	ErrMatchNotActive = errors.New("match is not active")

	// ErrStaleQuestion возвращается, когда ответ ссылается не на текущий вопрос
	ErrStaleQuestion = errors.New("answer references a stale question")

	// ErrAlreadyAnswered возвращается при повторном ответе на тот же вопрос
	ErrAlreadyAnswered = errors.New("player already answered this question")

	// ErrNotInMatch возвращается, когда игрок не состоит в матче
	ErrNotInMatch = errors.New("player is not part of this match")

	// ErrNotEnoughPlayers возвращается при старте матча с недобором игроков
	ErrNotEnoughPlayers = errors.New("not enough players to start the match")
)

// Причины завершения матча
const (
	EndReasonCompleted = "completed"
	EndReasonTimeout   = "timeout"
	EndReasonAbandoned = "abandoned"
)

// Минимальный состав для старта матча
const minPlayersToStart = 2

// Максимальная длина присланного ответа
const maxAnswerLength = 500

// Lifecycle управляет жизненным циклом матча: старт, прием ответов,
// завершение и фоновая зачистка зависших матчей.
type Lifecycle struct {
	config   *Config
	store    *MatchStore
	deps     *Dependencies
	advancer *Advancer
}

// NewLifecycle создает новый менеджер жизненного цикла
func NewLifecycle(config *Config, store *MatchStore, deps *Dependencies, advancer *Advancer) *Lifecycle {
	return &Lifecycle{
		config:   config,
		store:    store,
		deps:     deps,
		advancer: advancer,
	}
}

// StartMatch запускает матч в лобби.
// Предусловия: лобби существует, запускает владелец, статус waiting,
// игроков не меньше двух. Вопросы собираются заранее; отказ внешнего
// источника не срывает старт - провайдер отдает резервный пул.
func (l *Lifecycle) StartMatch(ctx context.Context, code string, requesterID uint) error {
	lobby, err := l.deps.LobbyRepo.GetByCode(code)
	if err != nil {
		return err
	}

	if lobby.OwnerID != requesterID {
		return fmt.Errorf("only the lobby owner can start the match: %w", apperrors.ErrForbidden)
	}
	if lobby.Status != entity.LobbyStatusWaiting {
		return fmt.Errorf("lobby %s is not waiting: %w", code, apperrors.ErrConflict)
	}
	if len(lobby.Players) < minPlayersToStart {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, len(lobby.Players), minPlayersToStart)
	}

	questions := l.deps.Provider.PrepareQuestions(
		ctx,
		lobby.Settings.QuestionCount,
		lobby.Settings.Difficulty,
		lobby.Settings.TimeLimitSec,
	)
	if len(questions) == 0 {
		// Провайдер обязан отдать хотя бы резервный пул
		return fmt.Errorf("question provider returned no questions for lobby %s", code)
	}

	now := time.Now()

	// Сбрасываем счет и ответы прошлых матчей
	for i := range lobby.Players {
		lobby.Players[i].Score = 0
		lobby.Players[i].Answers = nil
	}

	lobby.Status = entity.LobbyStatusPlaying
	lobby.StartedAt = &now
	lobby.EndedAt = nil
	lobby.CurrentQuestionIndex = 0
	lobby.Questions = entity.QuestionList(questions)
	if err := l.deps.LobbyRepo.Update(lobby); err != nil {
		return fmt.Errorf("failed to persist lobby %s at match start: %w", code, err)
	}

	roster := make(entity.PlayerList, len(lobby.Players))
	copy(roster, lobby.Players)

	state := &MatchState{
		Code:           code,
		Questions:      questions,
		Players:        roster,
		QuestionIndex:  0,
		StartedAt:      now,
		LastActivityAt: now,
		IsActive:       true,
	}
	if err := l.store.Create(state); err != nil {
		return err
	}

	log.Printf("[Lifecycle] Матч %s запущен: %d игроков, %d вопросов", code, len(roster), len(questions))

	l.deps.Broadcaster.BroadcastToLobby(code, websocket.EventGameStart, GameStartPayload{
		TotalQuestions: len(questions),
		Settings:       lobby.Settings,
	})

	l.advancer.ScheduleFirstQuestion(code)
	return nil
}

// SubmitAnswer принимает ответ игрока на текущий вопрос.
// Время ответа считается по серверным часам от момента рассылки вопроса;
// значение клиента не используется. Ответ, пришедший после лимита, но до
// фактического перехода, оценивается (бонус за скорость при этом нулевой).
func (l *Lifecycle) SubmitAnswer(code string, userID uint, questionID, answer string) (*AnswerResultPayload, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("answer must not be empty: %w", apperrors.ErrValidation)
	}
	if len(answer) > maxAnswerLength {
		return nil, fmt.Errorf("answer exceeds %d characters: %w", maxAnswerLength, apperrors.ErrValidation)
	}

	state, ok := l.store.Get(code)
	if !ok {
		return nil, fmt.Errorf("match %s: %w", code, ErrMatchNotActive)
	}

	state.lock()

	if !state.IsActive {
		state.unlock()
		return nil, fmt.Errorf("match %s: %w", code, ErrMatchNotActive)
	}

	current := state.currentQuestionLocked()
	if current == nil {
		state.unlock()
		return nil, fmt.Errorf("match %s: %w", code, ErrMatchNotActive)
	}
	if current.ID != questionID {
		// Ответ на уже закрытый вопрос: состояние не меняется
		state.unlock()
		return nil, fmt.Errorf("question %s: %w", questionID, ErrStaleQuestion)
	}

	player := state.findPlayerLocked(userID)
	if player == nil {
		state.unlock()
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotInMatch)
	}
	if player.HasAnswered(current.ID) {
		state.unlock()
		return nil, fmt.Errorf("user %d: %w", userID, ErrAlreadyAnswered)
	}

	now := time.Now()
	timeToAnswerMs := now.Sub(state.QuestionStartedAt).Milliseconds()
	score := ScoreAnswer(current, answer, timeToAnswerMs)

	player.Answers = append(player.Answers, entity.PlayerAnswer{
		QuestionID:     current.ID,
		Answer:         answer,
		IsCorrect:      score.IsCorrect,
		TimeToAnswerMs: timeToAnswerMs,
		ScoreGained:    score.Points,
		TimeBonus:      score.TimeBonus,
		AnsweredAt:     now,
	})
	player.Score += score.Points
	state.LastActivityAt = now

	result := &AnswerResultPayload{
		QuestionID:    current.ID,
		IsCorrect:     score.IsCorrect,
		CorrectAnswer: current.CorrectAnswer,
		ScoreGained:   score.Points,
		TimeBonus:     score.TimeBonus,
	}
	scoreboard := NewScoreboard(state.Players)
	roster := make(entity.PlayerList, len(state.Players))
	copy(roster, state.Players)
	state.unlock()

	// Состояние в памяти авторитетно, запись в базу - лучшая попытка
	l.persistRoster(code, roster)

	if err := l.deps.Broadcaster.SendEventToUser(userID, websocket.EventAnswerResult, result); err != nil {
		log.Printf("[Lifecycle] Матч %s: не удалось отправить результат игроку %d: %v", code, userID, err)
	}
	l.deps.Broadcaster.BroadcastToLobby(code, websocket.EventScoreUpdate, ScoreUpdatePayload{Players: scoreboard})

	l.advancer.OnAnswerScored(code)
	return result, nil
}

// EndMatch завершает матч. Идемпотентен: повторный вызов и вызов для
// несуществующего матча ничего не делают.
func (l *Lifecycle) EndMatch(code string, reason string) error {
	state, ok := l.store.Get(code)
	if !ok {
		return nil
	}

	state.lock()
	if !state.IsActive {
		state.unlock()
		return nil
	}
	state.IsActive = false
	state.stopTimersLocked()

	players := make(entity.PlayerList, len(state.Players))
	copy(players, state.Players)
	startedAt := state.StartedAt
	totalQuestions := len(state.Questions)
	state.unlock()

	l.store.Delete(code)

	now := time.Now()

	// Победитель - первый игрок состава с максимальным счетом.
	// Строгое сравнение сохраняет порядок вступления при равенстве очков.
	var winner *entity.Player
	for i := range players {
		if winner == nil || players[i].Score > winner.Score {
			winner = &players[i]
		}
	}

	// Закрываем лобби
	if lobby, err := l.deps.LobbyRepo.GetByCode(code); err == nil {
		lobby.Status = entity.LobbyStatusFinished
		lobby.EndedAt = &now
		lobby.Players = players
		if err := l.deps.LobbyRepo.Update(lobby); err != nil {
			log.Printf("[Lifecycle] Матч %s: не удалось закрыть лобби: %v", code, err)
		}
	} else {
		log.Printf("[Lifecycle] Матч %s: лобби не найдено при завершении: %v", code, err)
	}

	// Архивируем матч
	matchResult := &entity.MatchResult{
		LobbyCode:      code,
		TotalQuestions: totalQuestions,
		Players:        players,
		StartedAt:      startedAt,
		EndedAt:        now,
	}
	if winner != nil {
		winnerID := winner.UserID
		matchResult.WinnerID = &winnerID
	}
	if err := l.deps.ResultRepo.Create(matchResult); err != nil {
		log.Printf("[Lifecycle] Матч %s: не удалось сохранить итоги: %v", code, err)
	}

	// Обновляем статистику игроков
	userIDs := make([]uint, 0, len(players))
	for i := range players {
		userIDs = append(userIDs, players[i].UserID)
	}
	if err := l.deps.UserRepo.IncrementGames(userIDs); err != nil {
		log.Printf("[Lifecycle] Матч %s: не удалось обновить счетчики игр: %v", code, err)
	}
	if winner != nil {
		if err := l.deps.UserRepo.IncrementWins(winner.UserID); err != nil {
			log.Printf("[Lifecycle] Матч %s: не удалось обновить счетчик побед: %v", code, err)
		}
	}

	payload := GameEndPayload{
		Results: RankedResults(players),
		Reason:  reason,
	}
	if winner != nil {
		payload.Winner = &ScoreboardEntry{
			UserID:    winner.UserID,
			Name:      winner.Name,
			AvatarURL: winner.AvatarURL,
			Score:     winner.Score,
		}
	}
	l.deps.Broadcaster.BroadcastToLobby(code, websocket.EventGameEnd, payload)

	log.Printf("[Lifecycle] Матч %s завершен (%s), игроков: %d", code, reason, len(players))
	return nil
}

// SetPlayerConnection обновляет идентификатор соединения игрока в матче.
// Пустая строка означает отключение: игрок остается в составе и может
// вернуться, но не учитывается в условии быстрого перехода.
func (l *Lifecycle) SetPlayerConnection(code string, userID uint, connectionID string) {
	state, ok := l.store.Get(code)
	if !ok {
		return
	}

	state.lock()
	player := state.findPlayerLocked(userID)
	if player != nil {
		player.ConnectionID = connectionID
	}
	state.unlock()
}

// RunSweeper запускает фоновую зачистку зависших матчей.
// Блокируется до отмены контекста.
func (l *Lifecycle) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(l.config.SweepInterval)
	defer ticker.Stop()

	log.Printf("[Lifecycle] Зачистка зависших матчей каждые %v", l.config.SweepInterval)

	for {
		select {
		case <-ticker.C:
			l.sweepOnce()
		case <-ctx.Done():
			log.Printf("[Lifecycle] Зачистка остановлена")
			return
		}
	}
}

// sweepOnce принудительно завершает матчи, превысившие лимит длительности
// или порог бездействия
func (l *Lifecycle) sweepOnce() {
	now := time.Now()
	for _, code := range l.store.Codes() {
		state, ok := l.store.Get(code)
		if !ok {
			continue
		}

		state.lock()
		tooLong := now.Sub(state.StartedAt) > l.config.MaxMatchDuration
		idle := now.Sub(state.LastActivityAt) > l.config.StaleAfter
		state.unlock()

		if tooLong || idle {
			reason := EndReasonTimeout
			if idle && !tooLong {
				reason = EndReasonAbandoned
			}
			log.Printf("[Lifecycle] Матч %s завис (%s), принудительное завершение", code, reason)
			if err := l.EndMatch(code, reason); err != nil {
				log.Printf("[Lifecycle] Матч %s: ошибка принудительного завершения: %v", code, err)
			}
		}
	}
}

// persistRoster сохраняет состав матча в лобби
func (l *Lifecycle) persistRoster(code string, roster entity.PlayerList) {
	lobby, err := l.deps.LobbyRepo.GetByCode(code)
	if err != nil {
		log.Printf("[Lifecycle] Матч %s: не удалось прочитать лобби для записи состава: %v", code, err)
		return
	}
	lobby.Players = roster
	if err := l.deps.LobbyRepo.Update(lobby); err != nil {
		log.Printf("[Lifecycle] Матч %s: не удалось сохранить состав: %v", code, err)
	}
}
